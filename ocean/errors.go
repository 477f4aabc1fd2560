package ocean

import (
	"errors"
	"fmt"

	"github.com/richinsley/goocean/graphics"
)

var (
	// ErrConfiguration matches errors caused by an invalid construction
	// parameter. The simulation cannot run.
	ErrConfiguration = errors.New("ocean: invalid configuration")
	// ErrResourceCreation matches errors raised while creating GPU resources
	// before the first frame. The simulation cannot run.
	ErrResourceCreation = errors.New("ocean: resource creation failed")
	// ErrTransientRender matches a failed frame. It is not retried; the
	// simulation resumes from its last written buffers on the next Render.
	ErrTransientRender = errors.New("ocean: frame render failed")
)

// ConfigurationError reports the rejected field.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ocean: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
func (e *ConfigurationError) Unwrap() error        { return e.Err }

// ResourceCreationError reports which resource could not be created and in
// which storage format.
type ResourceCreationError struct {
	Resource string
	Format   graphics.Format
	Err      error
}

func (e *ResourceCreationError) Error() string {
	return fmt.Sprintf("ocean: creating %s (%s): %v", e.Resource, e.Format, e.Err)
}

func (e *ResourceCreationError) Is(target error) bool { return target == ErrResourceCreation }
func (e *ResourceCreationError) Unwrap() error        { return e.Err }

// RenderError reports the stage of the frame that failed.
type RenderError struct {
	Stage string
	Frame uint64
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("ocean: frame %d: %s: %v", e.Frame, e.Stage, e.Err)
}

func (e *RenderError) Is(target error) bool { return target == ErrTransientRender }
func (e *RenderError) Unwrap() error        { return e.Err }
