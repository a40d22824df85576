package matchmaking

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/muzz-matchmaking/internal/server"
)

// Client is a typed caller for the Matchmaking service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, c *Client, method string, req *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(server.CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) BuildQueue(ctx context.Context, req *BuildQueueRequest, opts ...grpc.CallOption) (*QueueResponse, error) {
	return invoke[BuildQueueRequest, QueueResponse](ctx, c, "BuildQueue", req, opts)
}

func (c *Client) PeekQueue(ctx context.Context, req *PeekQueueRequest, opts ...grpc.CallOption) (*QueueResponse, error) {
	return invoke[PeekQueueRequest, QueueResponse](ctx, c, "PeekQueue", req, opts)
}

func (c *Client) ProcessSwipe(ctx context.Context, req *ProcessSwipeRequest, opts ...grpc.CallOption) (*ProcessSwipeResponse, error) {
	return invoke[ProcessSwipeRequest, ProcessSwipeResponse](ctx, c, "ProcessSwipe", req, opts)
}

func (c *Client) UndoSwipe(ctx context.Context, req *PairRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[PairRequest, Empty](ctx, c, "UndoSwipe", req, opts)
}

func (c *Client) Unmatch(ctx context.Context, req *PairRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[PairRequest, Empty](ctx, c, "Unmatch", req, opts)
}

func (c *Client) PairState(ctx context.Context, req *PairRequest, opts ...grpc.CallOption) (*PairStateResponse, error) {
	return invoke[PairRequest, PairStateResponse](ctx, c, "PairState", req, opts)
}

func (c *Client) Score(ctx context.Context, req *ScoreRequest, opts ...grpc.CallOption) (*ScoreResponse, error) {
	return invoke[ScoreRequest, ScoreResponse](ctx, c, "Score", req, opts)
}

func (c *Client) GetQuota(ctx context.Context, req *QuotaRequest, opts ...grpc.CallOption) (*QuotaResponse, error) {
	return invoke[QuotaRequest, QuotaResponse](ctx, c, "GetQuota", req, opts)
}

func (c *Client) SaveProfile(ctx context.Context, req *SaveProfileRequest, opts ...grpc.CallOption) (*SaveProfileResponse, error) {
	return invoke[SaveProfileRequest, SaveProfileResponse](ctx, c, "SaveProfile", req, opts)
}

func (c *Client) SavePreference(ctx context.Context, req *SavePreferenceRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[SavePreferenceRequest, Empty](ctx, c, "SavePreference", req, opts)
}

func (c *Client) ListLikedYou(ctx context.Context, req *ListLikedYouRequest, opts ...grpc.CallOption) (*ListLikedYouResponse, error) {
	return invoke[ListLikedYouRequest, ListLikedYouResponse](ctx, c, "ListLikedYou", req, opts)
}

func (c *Client) CountLikedYou(ctx context.Context, req *CountLikedYouRequest, opts ...grpc.CallOption) (*CountLikedYouResponse, error) {
	return invoke[CountLikedYouRequest, CountLikedYouResponse](ctx, c, "CountLikedYou", req, opts)
}

func (c *Client) ListMatches(ctx context.Context, req *ListMatchesRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error) {
	return invoke[ListMatchesRequest, ListMatchesResponse](ctx, c, "ListMatches", req, opts)
}
