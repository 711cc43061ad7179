package provisioning

import "fmt"

// ValidationError reports a request whose payload cannot be provisioned.
// Nothing has been written when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProvisioningFailedError wraps a failure in one of the pipeline steps.
// Partial state committed by earlier steps is left in place; the request's
// status is unchanged so the caller may retry.
type ProvisioningFailedError struct {
	Step string
	Err  error
}

func (e *ProvisioningFailedError) Error() string {
	return fmt.Sprintf("provisioning failed at %s: %v", e.Step, e.Err)
}

func (e *ProvisioningFailedError) Unwrap() error {
	return e.Err
}

func failStep(step string, err error) error {
	return &ProvisioningFailedError{Step: step, Err: err}
}
