// Package qdrant provides a VectorDB implementation using Qdrant.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/ersonp/watlas/internal/domain/ports"
	"github.com/ersonp/watlas/internal/infrastructure/config"
)

// pointNamespace derives stable point ids from page ids, which are not
// required to be UUIDs.
var pointNamespace = uuid.MustParse("6f1c1b2e-4a52-4c1f-9d0e-8a7b3c2d1e00")

// Payload keys.
const (
	payloadPageID    = "page_id"
	payloadKind      = "kind"
	payloadName      = "name"
	payloadUniverse  = "universe"
	payloadCanonical = "canonical"
)

// Repository implements the VectorDB and CollectionManager interfaces using Qdrant.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		conn:       conn,
	}, nil
}

// apiKeyInterceptor attaches the Qdrant api-key header to every call.
func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// DeleteCollection removes the collection and all its points.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	_, err := r.client.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collection,
	})
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// waitForResult makes writes visible to the next search.
var waitForResult = true

// PointID maps a page id to its Qdrant point id.
func PointID(pageID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(pageID)).String()
}

// Save stores or replaces the vector of a page.
func (r *Repository) Save(ctx context.Context, vec ports.PageVector) error {
	return r.SaveBatch(ctx, []ports.PageVector{vec})
}

// SaveBatch stores multiple page vectors.
func (r *Repository) SaveBatch(ctx context.Context, vecs []ports.PageVector) error {
	if len(vecs) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, 0, len(vecs))
	for _, vec := range vecs {
		points = append(points, toPoint(vec))
	}

	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           &waitForResult,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	return nil
}

func toPoint(vec ports.PageVector) *pb.PointStruct {
	return &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(vec.PageID)},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: vec.Embedding},
			},
		},
		Payload: map[string]*pb.Value{
			payloadPageID:    {Kind: &pb.Value_StringValue{StringValue: vec.PageID}},
			payloadKind:      {Kind: &pb.Value_StringValue{StringValue: string(vec.Kind)}},
			payloadName:      {Kind: &pb.Value_StringValue{StringValue: vec.Name}},
			payloadUniverse:  {Kind: &pb.Value_StringValue{StringValue: vec.Universe}},
			payloadCanonical: {Kind: &pb.Value_BoolValue{BoolValue: vec.Canonical}},
		},
	}
}

// Search returns the closest pages to embedding.
func (r *Repository) Search(ctx context.Context, embedding []float32, limit int) ([]ports.SearchHit, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Include{
				Include: &pb.PayloadIncludeSelector{Fields: []string{payloadPageID}},
			},
		},
		WithVectors: &pb.WithVectorsSelector{
			SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: false},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	return scoredPointsToHits(resp.Result), nil
}

// Delete removes the vector of a page.
func (r *Repository) Delete(ctx context.Context, pageID string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Wait:           &waitForResult,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{
						{PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(pageID)}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}

	return nil
}

// DeleteAll removes every page vector.
func (r *Repository) DeleteAll(ctx context.Context) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Wait:           &waitForResult,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting all points: %w", err)
	}

	return nil
}

// Count returns the number of indexed pages.
func (r *Repository) Count(ctx context.Context) (uint64, error) {
	resp, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}

	if resp.Result.PointsCount == nil {
		return 0, nil
	}

	return *resp.Result.PointsCount, nil
}

// scoredPointsToHits converts scored points to search hits. Points without
// a page id payload are skipped.
func scoredPointsToHits(points []*pb.ScoredPoint) []ports.SearchHit {
	hits := make([]ports.SearchHit, 0, len(points))
	for _, point := range points {
		pageID := getStringValue(point.Payload, payloadPageID)
		if pageID == "" {
			continue
		}
		hits = append(hits, ports.SearchHit{PageID: pageID, Score: point.Score})
	}
	return hits
}

func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
