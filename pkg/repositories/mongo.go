package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/cbodonnell/minimmo/pkg/log"
	"github.com/cbodonnell/minimmo/pkg/repositories/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	charactersCollection = "characters"
	positionsCollection  = "positions"
	enemiesCollection    = "enemies"
	countersCollection   = "counters"
)

// MongoRepository stores each record type in its own collection.
// Integer ids come from a counters collection so records keep the same shape as the SQL backends.
type MongoRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoRepository(ctx context.Context, uri string, database string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("unable to ping database: %v", err)
	}

	db := client.Database(database)
	_, err = db.Collection(positionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "character_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create position index: %v", err)
	}
	log.Info("Connected to mongo database %s", database)

	return &MongoRepository{
		client: client,
		db:     db,
	}, nil
}

func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.db.Collection(countersCollection).FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %v", name, err)
	}
	return counter.Seq, nil
}

func (r *MongoRepository) CreateCharacter(ctx context.Context, character models.CharacterCreate) (*models.Character, error) {
	id, err := r.nextID(ctx, charactersCollection)
	if err != nil {
		return nil, err
	}
	c := &models.Character{
		ID:     id,
		Name:   character.Name,
		Image:  character.Image,
		Health: character.Health,
		Armor:  character.Armor,
		Mana:   character.Mana,
		Kills:  character.Kills,
	}
	if _, err := r.db.Collection(charactersCollection).InsertOne(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to insert character: %v", err)
	}
	return c, nil
}

func (r *MongoRepository) ListCharacters(ctx context.Context, skip int, limit int) ([]*models.Character, error) {
	skip, limit = normalizePage(skip, limit)
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetSkip(int64(skip)).SetLimit(int64(limit))
	cursor, err := r.db.Collection(charactersCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query characters: %v", err)
	}
	characters := []*models.Character{}
	if err := cursor.All(ctx, &characters); err != nil {
		return nil, fmt.Errorf("failed to decode characters: %v", err)
	}
	return characters, nil
}

func (r *MongoRepository) GetCharacter(ctx context.Context, characterID int64) (*models.Character, error) {
	c := &models.Character{}
	err := r.db.Collection(charactersCollection).FindOne(ctx, bson.M{"_id": characterID}).Decode(c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, characterNotFound()
		}
		return nil, fmt.Errorf("failed to decode character: %v", err)
	}
	return c, nil
}

func (r *MongoRepository) UpdateCharacter(ctx context.Context, characterID int64, update models.CharacterUpdate) (*models.Character, error) {
	set, err := bson.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal character update: %v", err)
	}
	fields, err := bson.Raw(set).Elements()
	if err != nil {
		return nil, fmt.Errorf("failed to read character update: %v", err)
	}
	// an empty $set is rejected by the server
	if len(fields) == 0 {
		return r.GetCharacter(ctx, characterID)
	}
	return r.findOneAndUpdateCharacter(ctx, characterID, bson.M{"$set": bson.Raw(set)})
}

func (r *MongoRepository) DeleteCharacter(ctx context.Context, characterID int64) (*models.Character, error) {
	c := &models.Character{}
	err := r.db.Collection(charactersCollection).FindOneAndDelete(ctx, bson.M{"_id": characterID}).Decode(c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, characterNotFound()
		}
		return nil, fmt.Errorf("failed to delete character: %v", err)
	}
	if _, err := r.db.Collection(positionsCollection).DeleteOne(ctx, bson.M{"character_id": characterID}); err != nil {
		return nil, fmt.Errorf("failed to delete position: %v", err)
	}
	return c, nil
}

func (r *MongoRepository) IncrementKills(ctx context.Context, characterID int64) (*models.Character, error) {
	return r.findOneAndUpdateCharacter(ctx, characterID, bson.M{"$inc": bson.M{"kills": 1}})
}

func (r *MongoRepository) findOneAndUpdateCharacter(ctx context.Context, characterID int64, update bson.M) (*models.Character, error) {
	c := &models.Character{}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.db.Collection(charactersCollection).FindOneAndUpdate(ctx, bson.M{"_id": characterID}, update, opts).Decode(c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, characterNotFound()
		}
		return nil, fmt.Errorf("failed to update character: %v", err)
	}
	return c, nil
}

func (r *MongoRepository) CharacterStats(ctx context.Context) (*models.CharacterStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_health", Value: bson.D{{Key: "$avg", Value: "$health"}}},
			{Key: "avg_armor", Value: bson.D{{Key: "$avg", Value: "$armor"}}},
			{Key: "avg_mana", Value: bson.D{{Key: "$avg", Value: "$mana"}}},
			{Key: "avg_kills", Value: bson.D{{Key: "$avg", Value: "$kills"}}},
		}}},
	}
	cursor, err := r.db.Collection(charactersCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate character stats: %v", err)
	}
	var results []struct {
		Total     int64   `bson:"total"`
		AvgHealth float64 `bson:"avg_health"`
		AvgArmor  float64 `bson:"avg_armor"`
		AvgMana   float64 `bson:"avg_mana"`
		AvgKills  float64 `bson:"avg_kills"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode character stats: %v", err)
	}
	if len(results) == 0 {
		return &models.CharacterStats{}, nil
	}
	res := results[0]
	return roundStats(&models.CharacterStats{
		Total:     res.Total,
		AvgHealth: res.AvgHealth,
		AvgArmor:  res.AvgArmor,
		AvgMana:   res.AvgMana,
		AvgKills:  res.AvgKills,
	}), nil
}

func (r *MongoRepository) GetPosition(ctx context.Context, characterID int64) (*models.Position, error) {
	p := &models.Position{}
	err := r.db.Collection(positionsCollection).FindOne(ctx, bson.M{"character_id": characterID}).Decode(p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, positionNotFound()
		}
		return nil, fmt.Errorf("failed to decode position: %v", err)
	}
	return p, nil
}

// UpsertPosition updates in place when the character already has a position.
// Otherwise it inserts one; losing an insert race to the unique character_id index is treated as an update.
func (r *MongoRepository) UpsertPosition(ctx context.Context, characterID int64, x int, y int) (*models.Position, error) {
	p, err := r.updatePosition(ctx, characterID, x, y)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update position: %v", err)
	}

	if _, err := r.GetCharacter(ctx, characterID); err != nil {
		return nil, err
	}

	id, err := r.nextID(ctx, positionsCollection)
	if err != nil {
		return nil, err
	}
	p = &models.Position{ID: id, CharacterID: characterID, X: x, Y: y}
	_, err = r.db.Collection(positionsCollection).InsertOne(ctx, p)
	if err == nil {
		return p, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("failed to insert position: %v", err)
	}

	p, err = r.updatePosition(ctx, characterID, x, y)
	if err != nil {
		return nil, fmt.Errorf("failed to update position: %v", err)
	}
	return p, nil
}

func (r *MongoRepository) updatePosition(ctx context.Context, characterID int64, x int, y int) (*models.Position, error) {
	p := &models.Position{}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.db.Collection(positionsCollection).FindOneAndUpdate(ctx,
		bson.M{"character_id": characterID},
		bson.M{"$set": bson.M{"x": x, "y": y}},
		opts,
	).Decode(p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *MongoRepository) ListPositions(ctx context.Context) ([]*models.Position, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.db.Collection(positionsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %v", err)
	}
	positions := []*models.Position{}
	if err := cursor.All(ctx, &positions); err != nil {
		return nil, fmt.Errorf("failed to decode positions: %v", err)
	}
	return positions, nil
}

func (r *MongoRepository) ListPositionViews(ctx context.Context) ([]*models.PositionView, error) {
	positions, err := r.ListPositions(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(bson.A, 0, len(positions))
	for _, p := range positions {
		ids = append(ids, p.CharacterID)
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.db.Collection(charactersCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query characters: %v", err)
	}
	var characters []*models.Character
	if err := cursor.All(ctx, &characters); err != nil {
		return nil, fmt.Errorf("failed to decode characters: %v", err)
	}

	byCharacter := make(map[int64]*models.Position, len(positions))
	for _, p := range positions {
		byCharacter[p.CharacterID] = p
	}
	views := []*models.PositionView{}
	for _, c := range characters {
		p, ok := byCharacter[c.ID]
		if !ok {
			continue
		}
		views = append(views, &models.PositionView{ID: c.ID, Name: c.Name, Image: c.Image, X: p.X, Y: p.Y})
	}
	return views, nil
}

func (r *MongoRepository) CreateEnemy(ctx context.Context, enemy models.EnemyCreate) (*models.Enemy, error) {
	id, err := r.nextID(ctx, enemiesCollection)
	if err != nil {
		return nil, err
	}
	e := &models.Enemy{ID: id, X: enemy.X, Y: enemy.Y, Health: enemy.Health}
	if _, err := r.db.Collection(enemiesCollection).InsertOne(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to insert enemy: %v", err)
	}
	return e, nil
}

func (r *MongoRepository) GetEnemy(ctx context.Context, enemyID int64) (*models.Enemy, error) {
	e := &models.Enemy{}
	err := r.db.Collection(enemiesCollection).FindOne(ctx, bson.M{"_id": enemyID}).Decode(e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, enemyNotFound()
		}
		return nil, fmt.Errorf("failed to decode enemy: %v", err)
	}
	return e, nil
}

func (r *MongoRepository) ListEnemies(ctx context.Context) ([]*models.Enemy, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.db.Collection(enemiesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query enemies: %v", err)
	}
	enemies := []*models.Enemy{}
	if err := cursor.All(ctx, &enemies); err != nil {
		return nil, fmt.Errorf("failed to decode enemies: %v", err)
	}
	return enemies, nil
}
