package storage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// Collection names used by MongoStore.
const (
	PaletteCollection = "palettes"
	StyleCollection   = "styles"
)

// MongoStore keeps palettes and styles in two collections of one database.
type MongoStore struct {
	client   *mongo.Client
	palettes *mongo.Collection
	styles   *mongo.Collection
}

type paletteDoc struct {
	Name      string    `bson:"_id"`
	Colors    []string  `bson:"colors"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// styleDoc stores the JSON interchange form so documents match the files
// written by the CLI.
type styleDoc struct {
	ID        string    `bson:"_id"`
	Config    string    `bson:"config"`
	Hash      string    `bson:"hash"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to uri and uses the named database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, storageError(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, storageError(err, "ping mongo")
	}
	db := client.Database(database)
	return &MongoStore{
		client:   client,
		palettes: db.Collection(PaletteCollection),
		styles:   db.Collection(StyleCollection),
	}, nil
}

// GetPalette returns a stored palette.
func (s *MongoStore) GetPalette(ctx context.Context, name string) (colorspace.Palette, error) {
	var doc paletteDoc
	err := s.palettes.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, paletteNotFound(name)
	}
	if err != nil {
		return nil, storageError(err, "find palette %s", name)
	}
	p := make(colorspace.Palette, 0, len(doc.Colors))
	for _, h := range doc.Colors {
		c, err := colorspace.ParseHex(h)
		if err != nil {
			return nil, storageError(err, "decode palette %s", name)
		}
		p = append(p, c)
	}
	return p, nil
}

// SetPalette upserts a palette.
func (s *MongoStore) SetPalette(ctx context.Context, name string, p colorspace.Palette) error {
	if err := errors.ValidatePaletteName(name); err != nil {
		return err
	}
	doc := paletteDoc{Name: name, Colors: p.Hex(), UpdatedAt: time.Now().UTC()}
	_, err := s.palettes.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return storageError(err, "save palette %s", name)
	}
	return nil
}

// ListPalettes returns the stored palette names in sorted order.
func (s *MongoStore) ListPalettes(ctx context.Context) ([]string, error) {
	cur, err := s.palettes.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, storageError(err, "list palettes")
	}
	defer cur.Close(ctx)

	var names []string
	for cur.Next(ctx) {
		var doc struct {
			Name string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, storageError(err, "decode palette name")
		}
		names = append(names, doc.Name)
	}
	if err := cur.Err(); err != nil {
		return nil, storageError(err, "list palettes")
	}
	slices.Sort(names)
	return names, nil
}

// GetStyle loads a stored style.
func (s *MongoStore) GetStyle(ctx context.Context, id string) (*style.Config, error) {
	if err := errors.ValidateStyleID(id); err != nil {
		return nil, err
	}
	var doc styleDoc
	err := s.styles.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, styleNotFound(id)
	}
	if err != nil {
		return nil, storageError(err, "find style %s", id)
	}
	cfg, err := style.ReadJSON(strings.NewReader(doc.Config))
	if err != nil {
		return nil, storageError(err, "decode style %s", id)
	}
	return cfg, nil
}

// PutStyle upserts a style.
func (s *MongoStore) PutStyle(ctx context.Context, id string, cfg *style.Config) error {
	if err := errors.ValidateStyleID(id); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return storageError(err, "encode style %s", id)
	}
	doc := styleDoc{ID: id, Config: string(raw), Hash: cfg.Hash(), UpdatedAt: time.Now().UTC()}
	_, err = s.styles.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return storageError(err, "save style %s", id)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
