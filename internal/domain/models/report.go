package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PestObservation records the biological state and severity grade of a pest.
type PestObservation struct {
	BiologicalState string `bson:"estado_biologico" json:"biologicalState"`
	Grade           string `bson:"grado" json:"grade"`
}

// DiseaseObservation records the severity grade of a disease.
type DiseaseObservation struct {
	Grade string `bson:"grado" json:"grade"`
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// FieldReport represents a crop inspection stored in MongoDB.
type FieldReport struct {
	ID           primitive.ObjectID            `bson:"_id,omitempty" json:"id"`
	Folio        string                        `bson:"folio" json:"folio"`
	Date         string                        `bson:"fecha" json:"date"`
	Crop         string                        `bson:"cultivo" json:"crop"`
	Surface      string                        `bson:"superficie" json:"surface"`
	Responsible  string                        `bson:"responsable" json:"responsible"`
	Pests        map[string]PestObservation    `bson:"plagas" json:"pests"`
	Diseases     map[string]DiseaseObservation `bson:"enfermedades" json:"diseases"`
	Observations string                        `bson:"observaciones" json:"observations"`
	Location     *GeoPoint                     `bson:"ubicacion,omitempty" json:"location,omitempty"`
	Company      string                        `bson:"empresa" json:"company"`
	Images       []string                      `bson:"images" json:"images"`
	CreatedAt    time.Time                     `bson:"created_at" json:"createdAt"`
}
