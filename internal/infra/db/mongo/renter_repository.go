package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaineligibility "rentbook/internal/domain/eligibility"
)

type RenterRepository struct {
	col *mongo.Collection
}

func NewRenterRepository(db *mongo.Database) *RenterRepository {
	return &RenterRepository{col: db.Collection("renter_kyc")}
}

type renterDocument struct {
	ID        string    `bson:"_id"`
	KYC       string    `bson:"kyc_status"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (r *RenterRepository) Renter(ctx context.Context, id string) (domaineligibility.Renter, error) {
	var doc renterDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domaineligibility.Renter{}, domaineligibility.ErrRenterNotFound
		}
		return domaineligibility.Renter{}, err
	}
	return domaineligibility.Renter{ID: doc.ID, KYC: domaineligibility.KYCStatus(doc.KYC)}, nil
}

func (r *RenterRepository) Save(ctx context.Context, renter domaineligibility.Renter) error {
	doc := renterDocument{ID: renter.ID, KYC: string(renter.KYC), UpdatedAt: time.Now().UTC()}
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

var _ domaineligibility.Directory = (*RenterRepository)(nil)
