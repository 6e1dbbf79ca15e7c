package mongodb

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/fieldops/internal/domain/models"
)

const (
	reportsCollection = "field_reports"
	imagesBucket      = "report_images"
)

// ErrNotFound is returned when a report or image does not exist.
var ErrNotFound = errors.New("document not found")

// MongoDBRepository stores field reports and their images in MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	bucket *gridfs.Bucket
	logger *zap.Logger
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(imagesBucket))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     db,
		bucket: bucket,
		logger: logger,
	}, nil
}

// CreateReport inserts a report and returns its generated identifier.
func (r *MongoDBRepository) CreateReport(ctx context.Context, report models.FieldReport) (string, error) {
	report.ID = primitive.NilObjectID
	res, err := r.db.Collection(reportsCollection).InsertOne(ctx, report)
	if err != nil {
		return "", fmt.Errorf("failed to insert field report: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id.Hex(), nil
}

// SetReportImages replaces the image URL list of a report.
func (r *MongoDBRepository) SetReportImages(ctx context.Context, reportID string, urls []string) error {
	oid, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return fmt.Errorf("invalid report id %q: %w", reportID, err)
	}

	res, err := r.db.Collection(reportsCollection).UpdateByID(ctx, oid, bson.M{"$set": bson.M{"images": urls}})
	if err != nil {
		return fmt.Errorf("failed to update report images: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetReport loads a single report.
func (r *MongoDBRepository) GetReport(ctx context.Context, reportID string) (models.FieldReport, error) {
	oid, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return models.FieldReport{}, ErrNotFound
	}

	var report models.FieldReport
	err = r.db.Collection(reportsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.FieldReport{}, ErrNotFound
	}
	if err != nil {
		return models.FieldReport{}, fmt.Errorf("failed to load report: %w", err)
	}
	return report, nil
}

// UploadImage streams an image into GridFS and returns the file id.
func (r *MongoDBRepository) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": "image/jpeg"})
	id, err := r.bucket.UploadFromStream(filename, content, opts)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	r.logger.Debug("image uploaded", zap.String("filename", filename), zap.String("file_id", id.Hex()))
	return id.Hex(), nil
}

// OpenImage returns a reader over a stored image.
func (r *MongoDBRepository) OpenImage(ctx context.Context, fileID string) (io.ReadCloser, error) {
	oid, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, ErrNotFound
	}

	stream, err := r.bucket.OpenDownloadStream(oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", fileID, err)
	}
	return stream, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
