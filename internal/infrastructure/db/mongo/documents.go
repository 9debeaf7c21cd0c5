package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odooqa/qa-system/internal/core/domain"
)

// authorDoc is the embedded public projection of a user.
type authorDoc struct {
	ID       string `bson:"id"`
	Username string `bson:"username"`
}

func toAuthorDoc(u *domain.User) *authorDoc {
	if u == nil {
		return nil
	}
	return &authorDoc{ID: u.ID, Username: u.Username}
}

func (a *authorDoc) toDomain() *domain.User {
	if a == nil {
		return nil
	}
	return &domain.User{ID: a.ID, Username: a.Username}
}

type questionDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Tags        []string           `bson:"tags"`
	Author      *authorDoc         `bson:"author,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d questionDoc) toDomain() *domain.Question {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.Question{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Tags:        tags,
		Author:      d.Author.toDomain(),
		CreatedAt:   d.CreatedAt,
	}
}

type answerDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	QuestionID primitive.ObjectID `bson:"question_id"`
	Text       string             `bson:"text"`
	Votes      int                `bson:"votes"`
	Author     *authorDoc         `bson:"author,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (d answerDoc) toDomain() domain.Answer {
	return domain.Answer{
		ID:         d.ID.Hex(),
		QuestionID: d.QuestionID.Hex(),
		Text:       d.Text,
		Votes:      d.Votes,
		Author:     d.Author.toDomain(),
		CreatedAt:  d.CreatedAt,
	}
}
