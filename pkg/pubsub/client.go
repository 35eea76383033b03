package pubsub

import (
	"context"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/glowcall/glowcall-backend/pkg/config"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
	"github.com/glowcall/glowcall-backend/pkg/logger"
)

const (
	kindTopic        = "topics"
	kindSubscription = "subscriptions"
)

// Client wraps the Pub/Sub v2 client with the booking and notification
// resources this backend publishes to and drains.
type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig
}

// NewClient connects to Pub/Sub and fails fast when a configured topic or
// subscription is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gcp project id is required")
	}

	psClient, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pubsub client")
	}

	c := &Client{client: psClient, projectID: projectID, cfg: cfg}
	if err := c.Ping(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"project_id":         projectID,
			"booking_topic":      cfg.BookingTopic,
			"notification_topic": cfg.NotificationTopic,
		}), "pubsub client initialized")
	}
	return c, nil
}

// resources lists every configured resource as kind -> names.
func resources(cfg config.PubSubConfig) map[string][]string {
	out := map[string][]string{}
	add := func(kind, name string) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out[kind] = append(out[kind], trimmed)
		}
	}
	add(kindTopic, cfg.BookingTopic)
	add(kindTopic, cfg.NotificationTopic)
	add(kindSubscription, cfg.NotificationSubscription)
	return out
}

// Ping checks that the booking and notification topics and the notification
// subscription exist.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "pubsub client not initialized")
	}
	configured := resources(c.cfg)
	if len(configured[kindSubscription]) == 0 {
		return pkgerrors.New(pkgerrors.CodeDependency, "pubsub subscription name is required")
	}

	for _, name := range configured[kindTopic] {
		_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{
			Topic: c.resourceName(kindTopic, name),
		})
		if err := missing("topic", name, err); err != nil {
			return err
		}
	}
	for _, name := range configured[kindSubscription] {
		_, err := c.client.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{
			Subscription: c.resourceName(kindSubscription, name),
		})
		if err := missing("subscription", name, err); err != nil {
			return err
		}
	}
	return nil
}

func missing(kind, name string, err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("%s %q does not exist", kind, name))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("check %s %q", kind, name))
}

// NotificationSubscription returns the subscriber the notification worker drains.
func (c *Client) NotificationSubscription() *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	full := c.resourceName(kindSubscription, c.cfg.NotificationSubscription)
	if full == "" {
		return nil
	}
	return c.client.Subscriber(full)
}

// Publisher returns a handle for a topic id or full resource name.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	full := c.resourceName(kindTopic, name)
	if full == "" {
		return nil
	}
	return c.client.Publisher(full)
}

// Close releases the Pub/Sub client resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// resourceName expands an id into projects/<project>/<kind>/<id>. Full
// resource names of the same kind pass through.
func (c *Client) resourceName(kind, name string) string {
	if c == nil {
		return ""
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/"+kind+"/") {
		return n
	}
	if c.projectID == "" {
		return ""
	}
	return "projects/" + c.projectID + "/" + kind + "/" + n
}
