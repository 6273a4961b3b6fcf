package models

import "time"

// Client is a customer requesting services.
type Client struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Town      string    `bson:"town" json:"town"`
	Suburb    string    `bson:"suburb" json:"suburb"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
