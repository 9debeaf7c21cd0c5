package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odooqa/qa-system/internal/core/domain"
)

const collectionAnswers = "answers"

// rankOrder is the order answers are shown in.
var rankOrder = bson.D{{Key: "votes", Value: -1}, {Key: "created_at", Value: 1}}

type AnswerRepository struct {
	col *mongo.Collection
}

func NewAnswerRepository(db *mongo.Database) *AnswerRepository {
	return &AnswerRepository{col: db.Collection(collectionAnswers)}
}

func (r *AnswerRepository) Create(ctx context.Context, a *domain.Answer) (*domain.Answer, error) {
	qid, err := primitive.ObjectIDFromHex(a.QuestionID)
	if err != nil {
		return nil, domain.ErrQuestionNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := answerDoc{
		ID:         primitive.NewObjectID(),
		QuestionID: qid,
		Text:       a.Text,
		Votes:      a.Votes,
		Author:     toAuthorDoc(a.Author),
		CreatedAt:  a.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert answer: %w", err)
	}
	out := doc.toDomain()
	return &out, nil
}

func (r *AnswerRepository) FindByID(ctx context.Context, id string) (*domain.Answer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAnswerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc answerDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAnswerNotFound
		}
		return nil, fmt.Errorf("find answer: %w", err)
	}
	out := doc.toDomain()
	return &out, nil
}

func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID string) ([]domain.Answer, error) {
	qid, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return nil, domain.ErrQuestionNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"question_id": qid}, options.Find().SetSort(rankOrder))
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer cur.Close(ctx)

	var docs []answerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}

	out := make([]domain.Answer, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// IncVotes applies delta with $inc and returns the document after the update.
func (r *AnswerRepository) IncVotes(ctx context.Context, answerID string, delta int) (*domain.Answer, error) {
	oid, err := primitive.ObjectIDFromHex(answerID)
	if err != nil {
		return nil, domain.ErrAnswerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc answerDoc
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"votes": delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAnswerNotFound
		}
		return nil, fmt.Errorf("inc votes: %w", err)
	}
	out := doc.toDomain()
	return &out, nil
}

// DeleteByQuestion removes the answers of a question and returns their ids so
// the caller can clean up what hangs off them.
func (r *AnswerRepository) DeleteByQuestion(ctx context.Context, questionID string) ([]string, error) {
	qid, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"question_id": qid}
	cur, err := r.col.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("find answers to purge: %w", err)
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode answers to purge: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	if _, err := r.col.DeleteMany(ctx, filter); err != nil {
		return nil, fmt.Errorf("delete answers: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
	}
	return ids, nil
}

// EnsureIndexes creates the ranking index used by ListByQuestion.
func (r *AnswerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "question_id", Value: 1}, {Key: "votes", Value: -1}, {Key: "created_at", Value: 1}},
	})
	return err
}
