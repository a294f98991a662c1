package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/arzan03/RestoHub/internal/db"
	"github.com/arzan03/RestoHub/internal/events"
	"github.com/arzan03/RestoHub/internal/models"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt input limit
)

// Claims are the custom JWT claims issued at login.
type Claims struct {
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	RestaurantID string `json:"restaurant_id,omitempty"`
	jwt.RegisteredClaims
}

type AuthService struct {
	db        db.Database
	events    events.Publisher
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(database db.Database, publisher events.Publisher, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if tokenTTL <= 0 {
		tokenTTL = 4 * time.Hour
	}
	return &AuthService{
		db:        database,
		events:    publisher,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GenerateJWT issues a signed token for u.
func (s *AuthService) GenerateJWT(u models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: u.ID.Hex(),
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	if u.RestaurantID != nil {
		claims.RestaurantID = u.RestaurantID.Hex()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseJWT validates tokenStr against secret and returns its claims.
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: jwt secret is empty", ErrInvalidToken)
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a staff account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, string, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" {
		return models.User{}, "", fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if len(in.Password) < minPasswordLength {
		return models.User{}, "", fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	if len(in.Password) > maxPasswordBytes {
		return models.User{}, "", fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, maxPasswordBytes)
	}

	collection := s.db.Collection(db.UsersCollection)

	// Check if user already exists
	var existing models.User
	err := collection.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	if err == nil {
		return models.User{}, "", ErrEmailExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, "", fmt.Errorf("%w: lookup email: %w", ErrCreationFailed, err)
	}

	hashed, err := HashPassword(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return models.User{}, "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("%w: hash password: %w", ErrCreationFailed, err)
	}

	perms := models.DefaultPermissions(models.RoleStaff)
	now := s.now().UTC()
	user := models.User{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Email:       email,
		Password:    hashed,
		Role:        models.RoleStaff,
		Permissions: &perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := collection.InsertOne(ctx, user); err != nil {
		// The unique index catches registrations racing past the lookup above.
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, "", ErrEmailExists
		}
		return models.User{}, "", fmt.Errorf("%w: insert user: %w", ErrCreationFailed, err)
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%w: sign token: %w", ErrCreationFailed, err)
	}

	publish(ctx, s.events, events.Event{
		Entity:     "user",
		Action:     "created",
		ResourceID: user.ID.Hex(),
		Metadata:   map[string]string{"role": user.Role},
	})
	logrus.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "role": user.Role}).Info("User registered")
	return user, token, nil
}

// Login authenticates a user and returns a JWT with role info
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	var user models.User
	err := s.db.Collection(db.UsersCollection).FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("find user: %w", err)
	}

	if !VerifyPassword(password, user.Password) {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		return models.User{}, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

// publish sends ev and only logs failures; events never fail a request.
func publish(ctx context.Context, p events.Publisher, ev events.Event) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		logrus.WithFields(logrus.Fields{
			"entity":      ev.Entity,
			"action":      ev.Action,
			"resource_id": ev.ResourceID,
			"error":       err.Error(),
		}).Warn("Event publish failed")
	}
}
