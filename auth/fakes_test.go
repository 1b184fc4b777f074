package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

// memUserStore is an in-memory UserStore for tests.
type memUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*User // keyed by username
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*User)}
}

func (s *memUserStore) Create(ctx context.Context, user *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return nil, ErrDuplicateUsername
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, ErrDuplicateEmail
		}
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	s.users[user.Username] = user
	return user, nil
}

func (s *memUserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok, nil
}

func (s *memUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) SetLoggedIn(ctx context.Context, username string, loggedIn bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return ErrNotFound
	}
	user.LoggedIn = loggedIn
	return nil
}

func (s *memUserStore) SetEnabled(ctx context.Context, userID int64, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			u.Enabled = enabled
			return nil
		}
	}
	return ErrNotFound
}

func (s *memUserStore) SetFirstTime(ctx context.Context, username string, status UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return ErrNotFound
	}
	user.FirstTime = status
	return nil
}

// memTokenStore is an in-memory ConfirmationTokenStore for tests.
type memTokenStore struct {
	mu     sync.Mutex
	nextID int64
	tokens map[string]*ConfirmationToken // keyed by token string
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string]*ConfirmationToken)}
}

func (s *memTokenStore) Save(ctx context.Context, token *ConfirmationToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	token.ID = s.nextID
	s.tokens[token.Token] = token
	return nil
}

func (s *memTokenStore) GetByToken(ctx context.Context, tokenString string) (*ConfirmationToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[tokenString]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *token
	return &copied, nil
}

func (s *memTokenStore) MarkConfirmed(ctx context.Context, tokenID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.ID == tokenID {
			confirmed := at
			t.ConfirmedAt = &confirmed
			return nil
		}
	}
	return ErrNotFound
}

func (s *memTokenStore) DeleteAllForUser(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.tokens {
		if t.UserID == userID {
			delete(s.tokens, key)
		}
	}
	return nil
}

func (s *memTokenStore) countForUser(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

// sentMail records one dispatched message.
type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeSender is a Sender that records messages and can be told to fail.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (s *fakeSender) Send(ctx context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (s *fakeSender) lastSent() (sentMail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return sentMail{}, false
	}
	return s.sent[len(s.sent)-1], true
}
