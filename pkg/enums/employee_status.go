package enums

// EmployeeStatus marks whether a beautician can take new bookings.
type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "ACTIVE"
	EmployeeStatusInactive EmployeeStatus = "INACTIVE"
)

var validEmployeeStatuses = []EmployeeStatus{
	EmployeeStatusActive,
	EmployeeStatusInactive,
}

func (e EmployeeStatus) IsValid() bool {
	for _, candidate := range validEmployeeStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}
