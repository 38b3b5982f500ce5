package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAttachmentRepo struct {
	col *mongo.Collection
}

func NewMongoAttachmentRepository(col *mongo.Collection) AttachmentRepository {
	return &mongoAttachmentRepo{col: col}
}

func (r *mongoAttachmentRepo) Create(a *Attachment) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.UploadedAt.IsZero() {
		a.UploadedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, a)
	return err
}

func (r *mongoAttachmentRepo) GetByID(id string) (Attachment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var a Attachment
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&a); err != nil {
		return Attachment{}, err
	}
	return a, nil
}

func (r *mongoAttachmentRepo) ListByCase(caseID int64) ([]Attachment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"case_id": caseID},
		options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Attachment
	for cur.Next(ctx) {
		var a Attachment
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, cur.Err()
}

func (r *mongoAttachmentRepo) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	return err
}
