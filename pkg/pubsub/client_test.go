package pubsub

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/glowcall/glowcall-backend/pkg/config"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
)

func TestResourcesSkipsBlank(t *testing.T) {
	got := resources(config.PubSubConfig{
		BookingTopic:             " bookings ",
		NotificationSubscription: "notify-sub",
	})
	assert.Equal(t, []string{"bookings"}, got[kindTopic])
	assert.Equal(t, []string{"notify-sub"}, got[kindSubscription])
	assert.Empty(t, resources(config.PubSubConfig{}))
}

func TestResourceName(t *testing.T) {
	c := &Client{projectID: "glowcall-dev"}

	assert.Equal(t, "projects/glowcall-dev/subscriptions/notify", c.resourceName(kindSubscription, "notify"))
	assert.Equal(t, "projects/other/subscriptions/notify", c.resourceName(kindSubscription, "projects/other/subscriptions/notify"))
	assert.Equal(t, "projects/glowcall-dev/topics/bookings", c.resourceName(kindTopic, " bookings "))
	assert.Equal(t, "projects/glowcall-dev/topics/projects/other/subscriptions/x", c.resourceName(kindTopic, "projects/other/subscriptions/x"))
	assert.Equal(t, "", c.resourceName(kindTopic, ""))
	assert.Equal(t, "", (&Client{}).resourceName(kindTopic, "bookings"))

	var nilClient *Client
	assert.Equal(t, "", nilClient.resourceName(kindTopic, "bookings"))
	assert.Nil(t, nilClient.Publisher("bookings"))
	assert.Nil(t, nilClient.NotificationSubscription())
	assert.True(t, pkgerrors.IsCode(nilClient.Ping(context.Background()), pkgerrors.CodeDependency))
}

func TestMissingMapsNotFound(t *testing.T) {
	assert.NoError(t, missing("topic", "bookings", nil))

	err := missing("topic", "bookings", status.Error(codes.NotFound, "gone"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Contains(t, err.Error(), `topic "bookings" does not exist`)

	err = missing("subscription", "notify", errors.New("deadline"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.ErrorContains(t, err, "deadline")
}
