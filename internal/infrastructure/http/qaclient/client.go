// Package qaclient talks to the Q&A domain service over its REST API and
// reports failures as domain errors.
package qaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/odooqa/qa-system/internal/core/domain"
	"github.com/odooqa/qa-system/internal/core/ports"
)

const maxBodyBytes = 4 << 20

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// BreakerFailures consecutive transient failures open the breaker for
	// BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	HTTPClient      *http.Client
	Logger          zerolog.Logger
}

// Client implements ports.QAGateway.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

var _ ports.QAGateway = (*Client)(nil)

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	log := opts.Logger

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "qa-service",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Only transient failures say anything about the service's health.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, domain.ErrTransient)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		breaker: cb,
		log:     log,
	}
}

// --- reads ---

func (c *Client) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	var q domain.Question
	if err := c.do(ctx, http.MethodGet, "/api/questions/"+url.PathEscape(id), "", nil, &q, domain.ErrQuestionNotFound); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *Client) ListAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	var answers []domain.Answer
	path := "/api/questions/" + url.PathEscape(questionID) + "/answers"
	if err := c.do(ctx, http.MethodGet, path, "", nil, &answers, domain.ErrQuestionNotFound); err != nil {
		return nil, err
	}
	if answers == nil {
		answers = []domain.Answer{}
	}
	return answers, nil
}

func (c *Client) ListQuestions(ctx context.Context, filter ports.ListQuestionsFilter) ([]*domain.Question, error) {
	q := url.Values{}
	if filter.Tag != "" {
		q.Set("tag", filter.Tag)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	path := "/api/questions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var questions []*domain.Question
	if err := c.do(ctx, http.MethodGet, path, "", nil, &questions, nil); err != nil {
		return nil, err
	}
	return questions, nil
}

// --- mutations ---

type createQuestionRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (c *Client) CreateQuestion(ctx context.Context, token string, in ports.CreateQuestionInput) (*domain.Question, error) {
	var q domain.Question
	body := createQuestionRequest{Title: in.Title, Description: in.Description, Tags: in.Tags}
	if err := c.do(ctx, http.MethodPost, "/api/questions", token, body, &q, nil); err != nil {
		return nil, err
	}
	return &q, nil
}

type createAnswerRequest struct {
	Text string `json:"text"`
}

func (c *Client) CreateAnswer(ctx context.Context, token, questionID, text string) (*domain.Answer, error) {
	var a domain.Answer
	path := "/api/questions/" + url.PathEscape(questionID) + "/answers"
	if err := c.do(ctx, http.MethodPost, path, token, createAnswerRequest{Text: text}, &a, domain.ErrQuestionNotFound); err != nil {
		return nil, err
	}
	return &a, nil
}

type voteRequest struct {
	VoteType domain.VoteDirection `json:"voteType"`
}

func (c *Client) Vote(ctx context.Context, token string, intent domain.VoteIntent) (*domain.VoteResult, error) {
	var res domain.VoteResult
	path := "/api/answers/" + url.PathEscape(intent.AnswerID) + "/vote"
	if err := c.do(ctx, http.MethodPost, path, token, voteRequest{VoteType: intent.Direction}, &res, domain.ErrAnswerNotFound); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DeleteQuestion(ctx context.Context, token, questionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/questions/"+url.PathEscape(questionID), token, nil, nil, domain.ErrQuestionNotFound)
}

// --- identity ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", loginRequest{Email: email, Password: password}, &resp, domain.ErrUserNotFound)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return "", nil, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
		}
		return "", nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return "", nil, fmt.Errorf("%w: login response without token", domain.ErrTransient)
	}
	return resp.Token, resp.User, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	var resp authResponse
	body := registerRequest{Username: username, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &resp, nil); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &resp, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, domain.ErrUnauthenticated
	}
	return resp.User, nil
}

// --- transport ---

type errorEnvelope struct {
	Error string `json:"error"`
}

// do runs one request through the circuit breaker.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any, notFound error) error {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.roundTrip(ctx, method, path, token, body, out, notFound)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrTransient, method, path, err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, body, out any, notFound error) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrTransient, method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %w", domain.ErrTransient, method, path, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("qa service call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env errorEnvelope
		_ = json.Unmarshal(payload, &env)
		return statusError(resp.StatusCode, env.Error, notFound)
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", domain.ErrTransient, method, path, err)
	}
	return nil
}
