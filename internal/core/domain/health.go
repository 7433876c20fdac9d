package domain

type DependencyStatus string

const (
	StatusUp     DependencyStatus = "up"
	StatusDown   DependencyStatus = "down"
	StatusAbsent DependencyStatus = "absent"
)

type HealthReport struct {
	Healthy      bool                        `json:"-"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}
