package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventala/eventala/internal/core/model"
)

// MongoDB is a mongo adapter for the document stores (profiles, events,
// stocks). Writes are version-conditional: a put carrying a non-zero
// version only succeeds against a document still at that version.
type MongoDB struct {
	profiles *mongo.Collection
	events   *mongo.Collection
	stocks   *mongo.Collection
	nowFunc  func() time.Time
}

// MongoDBArgs are the mandatory arguments for the creation of a MongoDB.
type MongoDBArgs struct {
	// Profiles is the profile collection.
	Profiles *mongo.Collection

	// Events is the event collection.
	Events *mongo.Collection

	// Stocks is the stock collection.
	Stocks *mongo.Collection
}

// MongoDBOptArgs are the optional arguments for building a MongoDB.
type MongoDBOptArgs = func(*MongoDB)

// WithNowFunc can be used to override the nowFunc. Useful for testing.
func WithNowFunc(nowFunc func() time.Time) MongoDBOptArgs {
	return func(m *MongoDB) {
		m.nowFunc = nowFunc
	}
}

// NewMongoDB creates a new MongoDB.
func NewMongoDB(args MongoDBArgs, optArgs ...MongoDBOptArgs) (*MongoDB, error) {
	if args.Profiles == nil || args.Events == nil || args.Stocks == nil {
		return nil, errors.New("nil collection passed to mongo adapter")
	}
	m := &MongoDB{
		profiles: args.Profiles,
		events:   args.Events,
		stocks:   args.Stocks,
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range optArgs {
		opt(m)
	}
	return m, nil
}

type profileDB struct {
	UserID     string         `bson:"_id"`
	Email      string         `bson:"email"`
	Role       string         `bson:"role"`
	Attributes map[string]any `bson:"attributes,omitempty"`
	Version    int64          `bson:"version"`
	CreatedAt  time.Time      `bson:"created_at"`
	UpdatedAt  time.Time      `bson:"updated_at"`
}

type eventDB struct {
	EventID       string    `bson:"_id"`
	Title         string    `bson:"title"`
	Description   string    `bson:"description,omitempty"`
	Location      string    `bson:"location,omitempty"`
	StartsAt      time.Time `bson:"starts_at,omitempty"`
	Registrations []string  `bson:"registrations"`
	Version       int64     `bson:"version"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

type stockDB struct {
	StockID   string    `bson:"_id"`
	Label     string    `bson:"label"`
	Quantity  int64     `bson:"quantity"`
	Version   int64     `bson:"version"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// GetProfile fetches a profile by user-id.
func (m *MongoDB) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var doc profileDB
	if err := m.profiles.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return profileToModel(doc), nil
}

// PutProfile inserts the profile when its version is zero, otherwise
// replaces the document conditionally on the version read.
func (m *MongoDB) PutProfile(ctx context.Context, profile *model.Profile) error {
	if profile == nil {
		return errors.New("nil profile passed to put method")
	}
	now := m.nowFunc()
	doc := profileDB{
		UserID:     profile.UserID,
		Email:      profile.Email,
		Role:       string(profile.Role),
		Attributes: profile.Attributes,
		Version:    profile.Version + 1,
		CreatedAt:  profile.CreatedAt,
		UpdatedAt:  now,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}

	if profile.Version == 0 {
		if _, err := m.profiles.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return model.ErrAlreadyExists
			}
			return err
		}
	} else {
		if err := m.conditionalReplace(ctx, m.profiles, doc.UserID, profile.Version, doc); err != nil {
			return err
		}
	}

	profile.Version = doc.Version
	profile.CreatedAt = doc.CreatedAt
	profile.UpdatedAt = doc.UpdatedAt
	return nil
}

// DeleteProfile removes the profile document.
func (m *MongoDB) DeleteProfile(ctx context.Context, userID string) error {
	return deleteByID(ctx, m.profiles, userID)
}

// ListProfiles scans all profiles in creation order.
func (m *MongoDB) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	cursor, err := m.profiles.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []profileDB
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	profiles := make([]model.Profile, 0, len(docs))
	for _, doc := range docs {
		profiles = append(profiles, *profileToModel(doc))
	}
	return profiles, nil
}

// GetEvent fetches an event by id.
func (m *MongoDB) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	var doc eventDB
	if err := m.events.FindOne(ctx, bson.D{{Key: "_id", Value: eventID}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return eventToModel(doc), nil
}

// PutEvent inserts or conditionally replaces the event document.
func (m *MongoDB) PutEvent(ctx context.Context, event *model.Event) error {
	if event == nil {
		return errors.New("nil event passed to put method")
	}
	now := m.nowFunc()
	doc := eventDB{
		EventID:       event.EventID,
		Title:         event.Title,
		Description:   event.Description,
		Location:      event.Location,
		StartsAt:      event.StartsAt,
		Registrations: event.Registrations,
		Version:       event.Version + 1,
		CreatedAt:     event.CreatedAt,
		UpdatedAt:     now,
	}
	if doc.Registrations == nil {
		doc.Registrations = []string{}
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}

	if event.Version == 0 {
		if _, err := m.events.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return model.ErrAlreadyExists
			}
			return err
		}
	} else {
		if err := m.conditionalReplace(ctx, m.events, doc.EventID, event.Version, doc); err != nil {
			return err
		}
	}

	event.Version = doc.Version
	event.CreatedAt = doc.CreatedAt
	event.UpdatedAt = doc.UpdatedAt
	return nil
}

// DeleteEvent removes the event document.
func (m *MongoDB) DeleteEvent(ctx context.Context, eventID string) error {
	return deleteByID(ctx, m.events, eventID)
}

// ListEvents scans all events in creation order.
func (m *MongoDB) ListEvents(ctx context.Context) ([]model.Event, error) {
	cursor, err := m.events.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []eventDB
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	events := make([]model.Event, 0, len(docs))
	for _, doc := range docs {
		events = append(events, *eventToModel(doc))
	}
	return events, nil
}

// GetStock fetches a stock item by id.
func (m *MongoDB) GetStock(ctx context.Context, stockID string) (*model.Stock, error) {
	var doc stockDB
	if err := m.stocks.FindOne(ctx, bson.D{{Key: "_id", Value: stockID}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return stockToModel(doc), nil
}

// PutStock inserts or conditionally replaces the stock document.
func (m *MongoDB) PutStock(ctx context.Context, stock *model.Stock) error {
	if stock == nil {
		return errors.New("nil stock passed to put method")
	}
	now := m.nowFunc()
	doc := stockDB{
		StockID:   stock.StockID,
		Label:     stock.Label,
		Quantity:  stock.Quantity,
		Version:   stock.Version + 1,
		CreatedAt: stock.CreatedAt,
		UpdatedAt: now,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}

	if stock.Version == 0 {
		if _, err := m.stocks.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return model.ErrAlreadyExists
			}
			return err
		}
	} else {
		if err := m.conditionalReplace(ctx, m.stocks, doc.StockID, stock.Version, doc); err != nil {
			return err
		}
	}

	stock.Version = doc.Version
	stock.CreatedAt = doc.CreatedAt
	stock.UpdatedAt = doc.UpdatedAt
	return nil
}

// DeleteStock removes the stock document.
func (m *MongoDB) DeleteStock(ctx context.Context, stockID string) error {
	return deleteByID(ctx, m.stocks, stockID)
}

// ListStocks scans all stock items in creation order.
func (m *MongoDB) ListStocks(ctx context.Context) ([]model.Stock, error) {
	cursor, err := m.stocks.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []stockDB
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	stocks := make([]model.Stock, 0, len(docs))
	for _, doc := range docs {
		stocks = append(stocks, *stockToModel(doc))
	}
	return stocks, nil
}

// conditionalReplace replaces the document only if it is still at the
// expected version. A miss is a conflict when the document exists and
// not-found otherwise.
func (m *MongoDB) conditionalReplace(ctx context.Context, collection *mongo.Collection, id string, expectedVersion int64, doc any) error {
	filter := bson.D{{Key: "_id", Value: id}, {Key: "version", Value: expectedVersion}}
	res, err := collection.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	count, err := collection.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("error resolving conditional write miss: %w", err)
	}
	if count == 0 {
		return model.ErrNotFound
	}
	return model.ErrConflict
}

func deleteByID(ctx context.Context, collection *mongo.Collection, id string) error {
	res, err := collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func profileToModel(doc profileDB) *model.Profile {
	return &model.Profile{
		UserID:     doc.UserID,
		Email:      doc.Email,
		Role:       model.Role(doc.Role),
		Attributes: doc.Attributes,
		Version:    doc.Version,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

func eventToModel(doc eventDB) *model.Event {
	return &model.Event{
		EventID:       doc.EventID,
		Title:         doc.Title,
		Description:   doc.Description,
		Location:      doc.Location,
		StartsAt:      doc.StartsAt,
		Registrations: doc.Registrations,
		Version:       doc.Version,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

func stockToModel(doc stockDB) *model.Stock {
	return &model.Stock{
		StockID:   doc.StockID,
		Label:     doc.Label,
		Quantity:  doc.Quantity,
		Version:   doc.Version,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
