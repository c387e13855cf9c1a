package chat

import "fmt"

// SetEmployeeConfig records the .mdc rule file path for an agent. The
// path is stored as given; it is resolved lazily at registration time.
func SetEmployeeConfig(store Store, agent, mdcPath string) error {
	if agent == "" {
		return fmt.Errorf("an agent name is required")
	}
	if mdcPath == "" {
		return fmt.Errorf("an mdc file path is required")
	}
	cfg := store.EmployeeConfig()
	cfg[agent] = EmployeeEntry{MDCFilePath: mdcPath, UpdatedAt: nowStamp()}
	if err := store.SaveEmployeeConfig(cfg); err != nil {
		return fmt.Errorf("saving employee config: %w", err)
	}
	return nil
}

// EmployeeMDCPath returns the configured .mdc path for an agent, empty
// when none is set.
func EmployeeMDCPath(store Store, agent string) string {
	return store.EmployeeConfig()[agent].MDCFilePath
}
