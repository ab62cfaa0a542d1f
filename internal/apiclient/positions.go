package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/target/positions-ui/internal/domain/position"
	"github.com/target/positions-ui/internal/ports"
)

var _ ports.PositionsAPI = (*PositionsClient)(nil)

// PositionsClient is the authenticated /positions resource.
type PositionsClient struct {
	c *Client
}

// NewPositionsClient returns a positions client that reads its bearer token from store on every call.
func NewPositionsClient(c *Client, store ports.CredentialStore) *PositionsClient {
	return &PositionsClient{c: c.WithCredentials(store)}
}

func (p *PositionsClient) List(ctx context.Context) ([]position.Position, error) {
	var out []position.Position
	if err := p.c.Do(ctx, http.MethodGet, "/positions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PositionsClient) Create(ctx context.Context, in position.Input) (position.Position, error) {
	var out position.Position
	if err := p.c.Do(ctx, http.MethodPost, "/positions", in, &out); err != nil {
		return position.Position{}, err
	}
	return out, nil
}

func (p *PositionsClient) Update(ctx context.Context, id int, in position.Input) (position.Position, error) {
	var out position.Position
	if err := p.c.Do(ctx, http.MethodPatch, positionPath(id), in, &out); err != nil {
		return position.Position{}, err
	}
	return out, nil
}

func (p *PositionsClient) Delete(ctx context.Context, id int) error {
	return p.c.Do(ctx, http.MethodDelete, positionPath(id), nil, nil)
}

func positionPath(id int) string {
	return "/positions/" + strconv.Itoa(id)
}
