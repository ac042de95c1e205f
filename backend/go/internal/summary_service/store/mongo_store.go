package store

import (
	"Abridge_1.0/backend/go/internal/models"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRecordStore 把摘要记录保存在 MongoDB 集合中。
// 文档没有外键，删除账户时由账户服务调用 DeleteByUser 清理。
type MongoRecordStore struct {
	collection *mongo.Collection
}

// NewMongoRecordStore 创建 MongoRecordStore。
func NewMongoRecordStore(collection *mongo.Collection) *MongoRecordStore {
	return &MongoRecordStore{collection: collection}
}

// EnsureIndexes 创建按用户和时间查询所需的索引。
func (s *MongoRecordStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("创建摘要索引失败: %w", err)
	}
	return nil
}

// Create 插入一条记录。
func (s *MongoRecordStore) Create(ctx context.Context, record *models.SummaryRecord) error {
	if err := record.Prepare(); err != nil {
		return err
	}
	_, err := s.collection.InsertOne(ctx, record)
	return err
}

// ListByUser 按创建时间倒序分页返回用户的记录以及记录总数。
func (s *MongoRecordStore) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]models.SummaryRecord, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	records := []models.SummaryRecord{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// DeleteByUser 删除用户的全部记录。
func (s *MongoRecordStore) DeleteByUser(ctx context.Context, userID uint) error {
	_, err := s.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
