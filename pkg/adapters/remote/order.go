package remote

import (
	"context"
	"fmt"

	"github.com/aretw0/orca/pkg/domain"
)

// OrderClient posts finished orders to the email service. It implements ports.OrderSender.
type OrderClient struct {
	client
}

// NewOrderClient creates a client for the send-order endpoint at url.
func NewOrderClient(url string, opts ...Option) *OrderClient {
	return &OrderClient{client: newClient(url, opts)}
}

// SendOrder delivers req. A reply without success counts as a failure.
func (c *OrderClient) SendOrder(ctx context.Context, req domain.OrderRequest) error {
	var resp domain.OrderResponse
	if err := c.post(ctx, req, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: order %s rejected: %s", domain.ErrCollaboratorUnavailable, req.OrderNumber, resp.Error)
	}
	c.logger.Debug("order email accepted", "order_id", req.OrderNumber)
	return nil
}
