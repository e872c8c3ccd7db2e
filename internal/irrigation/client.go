package irrigation

import (
	"context"
	"fmt"
	"strconv"
)

// Service is the set of backend operations the UI depends on.
// It is implemented by *Client and can be faked in tests.
type Service interface {
	ListFields(ctx context.Context) ([]Field, error)
	GetField(ctx context.Context, id int64) (Field, error)
	ListSensorReadings(ctx context.Context) (SensorReadings, error)
	StartIrrigation(ctx context.Context) (IrrigationStatus, error)
	StopIrrigation(ctx context.Context) (IrrigationStatus, error)
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

const (
	pathFields          = "/fields"
	pathSensors         = "/sensors"
	pathIrrigationStart = "/irrigation/start"
	pathIrrigationStop  = "/irrigation/stop"
)

// emptyBody encodes as {}.
type emptyBody struct{}

// Client maps each backend operation onto exactly one request.
// It holds no state besides the transport.
type Client struct {
	transport Transport
}

// NewClient builds a Client over HTTP rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	t, err := NewHTTPTransport(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{transport: t}, nil
}

// NewClientWithTransport builds a Client over an arbitrary Transport.
func NewClientWithTransport(t Transport) *Client {
	return &Client{transport: t}
}

// ListFields retrieves every field. An empty backend yields an empty slice.
func (c *Client) ListFields(ctx context.Context) ([]Field, error) {
	if c == nil || c.transport == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var fields []Field
	if err := c.transport.Get(ctx, pathFields, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = []Field{}
	}
	return fields, nil
}

// GetField retrieves one field by id. Unknown ids surface as a StatusError
// matching ErrNotFound.
func (c *Client) GetField(ctx context.Context, id int64) (Field, error) {
	if c == nil || c.transport == nil {
		return Field{}, fmt.Errorf("client is nil")
	}
	var field Field
	if err := c.transport.Get(ctx, pathFields+"/"+strconv.FormatInt(id, 10), &field); err != nil {
		return Field{}, err
	}
	return field, nil
}

// ListSensorReadings retrieves the current sensor payload untouched.
func (c *Client) ListSensorReadings(ctx context.Context) (SensorReadings, error) {
	if c == nil || c.transport == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var readings SensorReadings
	if err := c.transport.Get(ctx, pathSensors, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

// StartIrrigation asks the backend to start irrigating. Every call issues a
// new POST.
func (c *Client) StartIrrigation(ctx context.Context) (IrrigationStatus, error) {
	return c.postAction(ctx, pathIrrigationStart)
}

// StopIrrigation asks the backend to stop irrigating.
func (c *Client) StopIrrigation(ctx context.Context) (IrrigationStatus, error) {
	return c.postAction(ctx, pathIrrigationStop)
}

func (c *Client) postAction(ctx context.Context, path string) (IrrigationStatus, error) {
	if c == nil || c.transport == nil {
		return IrrigationStatus{}, fmt.Errorf("client is nil")
	}
	var status IrrigationStatus
	if err := c.transport.Post(ctx, path, emptyBody{}, &status); err != nil {
		return IrrigationStatus{}, err
	}
	return status, nil
}
