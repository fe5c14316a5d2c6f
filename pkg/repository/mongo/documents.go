package mongo

import (
	"time"

	"github.com/jordanlanch/leadboard/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type leadDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID        primitive.ObjectID `bson:"owner_id"`
	FirstName      string             `bson:"first_name"`
	LastName       string             `bson:"last_name"`
	Email          string             `bson:"email"`
	Phone          string             `bson:"phone"`
	Company        string             `bson:"company"`
	City           string             `bson:"city"`
	State          string             `bson:"state"`
	Source         string             `bson:"source"`
	Status         string             `bson:"status"`
	Score          int                `bson:"score"`
	LeadValue      float64            `bson:"lead_value"`
	IsQualified    bool               `bson:"is_qualified"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
	LastActivityAt time.Time          `bson:"last_activity_at"`
}

func toLeadDocument(l *models.Lead, id, owner primitive.ObjectID) leadDocument {
	return leadDocument{
		ID:             id,
		OwnerID:        owner,
		FirstName:      l.FirstName,
		LastName:       l.LastName,
		Email:          l.Email,
		Phone:          l.Phone,
		Company:        l.Company,
		City:           l.City,
		State:          l.State,
		Source:         l.Source,
		Status:         l.Status,
		Score:          l.Score,
		LeadValue:      l.LeadValue,
		IsQualified:    l.IsQualified,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
		LastActivityAt: l.LastActivityAt,
	}
}

func (d leadDocument) toModel() models.Lead {
	return models.Lead{
		ID:             d.ID.Hex(),
		OwnerID:        d.OwnerID.Hex(),
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Email:          d.Email,
		Phone:          d.Phone,
		Company:        d.Company,
		City:           d.City,
		State:          d.State,
		Source:         d.Source,
		Status:         d.Status,
		Score:          d.Score,
		LeadValue:      d.LeadValue,
		IsQualified:    d.IsQualified,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		LastActivityAt: d.LastActivityAt,
	}
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d userDocument) toModel() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}
