// Package library is a Qdrant-backed index of validated circuit models.
// Each model is stored as a structural fingerprint vector, which makes
// "show me designs like this one" a k-NN search instead of a graph walk.
package library

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/voltforge/voltforge/engine/normalize"
)

// namespace for deterministic point IDs: the same model name always maps to
// the same point, so re-adding a model overwrites its entry.
var pointNamespace = uuid.MustParse("9d1c5a60-2f6b-4c8e-b1a4-7e93d07c25f1")

// Match is one similarity hit.
type Match struct {
	ID         string
	Name       string
	Score      float32
	Components int
}

// Library is the sole owner of all Qdrant operations.
type Library struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New creates a Library connected to Qdrant at the given gRPC address.
func New(addr, collection string) (*Library, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("library: dial qdrant %s: %w", addr, err)
	}
	return &Library{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (l *Library) Close() error {
	return l.conn.Close()
}

// EnsureCollection creates the fingerprint collection if it doesn't exist.
func (l *Library) EnsureCollection(ctx context.Context) error {
	list, err := l.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("library: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == l.collection {
			return nil
		}
	}

	_, err = l.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: l.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(Dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("library: create collection %s: %w", l.collection, err)
	}
	return nil
}

// Add indexes a canonical model under a deterministic point ID derived from
// its name.
func (l *Library) Add(ctx context.Context, m *normalize.Model) error {
	id := uuid.NewSHA1(pointNamespace, []byte(m.Name)).String()

	wait := true
	_, err := l.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: l.collection,
		Wait:           &wait,
		Points: []*pb.PointStruct{{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: id},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: Fingerprint(m)},
				},
			},
			Payload: map[string]*pb.Value{
				"name":       {Kind: &pb.Value_StringValue{StringValue: m.Name}},
				"components": {Kind: &pb.Value_IntegerValue{IntegerValue: int64(len(m.Components))}},
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("library: upsert model %s: %w", m.Name, err)
	}
	return nil
}

// Similar returns the models structurally closest to the given one.
func (l *Library) Similar(ctx context.Context, m *normalize.Model, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}
	resp, err := l.points.Search(ctx, &pb.SearchPoints{
		CollectionName: l.collection,
		Vector:         Fingerprint(m),
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("library: search: %w", err)
	}

	matches := make([]Match, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		m := Match{
			ID:    r.GetId().GetUuid(),
			Score: r.GetScore(),
		}
		if p := r.GetPayload(); p != nil {
			m.Name = p["name"].GetStringValue()
			m.Components = int(p["components"].GetIntegerValue())
		}
		matches[i] = m
	}
	return matches, nil
}

// Remove deletes a model's fingerprint by name.
func (l *Library) Remove(ctx context.Context, name string) error {
	id := uuid.NewSHA1(pointNamespace, []byte(name)).String()
	wait := true
	_, err := l.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: l.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("library: delete model %s: %w", name, err)
	}
	return nil
}
