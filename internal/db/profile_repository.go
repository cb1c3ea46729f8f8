package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"stockx-backend-go/internal/models"
)

const usersCollection = "users"

// firestoreProfileRepository implements ProfileRepository using Firestore.
type firestoreProfileRepository struct {
	client *firestore.Client
}

// NewFirestoreProfileRepository creates a new instance of firestoreProfileRepository.
func NewFirestoreProfileRepository(client *firestore.Client) ProfileRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ProfileRepository.")
	}
	return &firestoreProfileRepository{client: client}
}

// NormalizeEmail lowercases and trims an address the way profiles store it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create adds a new profile document keyed by the identity UID.
// createdAt and updatedAt are filled by Firestore when left zero.
func (r *firestoreProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.UID == "" {
		return errors.New("profile UID cannot be empty for Create operation")
	}
	profile.Email = NormalizeEmail(profile.Email)

	_, err := r.client.Collection(usersCollection).Doc(profile.UID).Create(ctx, profile)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("profile with ID '%s' already exists: %w", profile.UID, err)
		}
		return fmt.Errorf("failed to create profile with ID '%s': %w", profile.UID, err)
	}
	return nil
}

// GetByID retrieves a profile document by UID.
func (r *firestoreProfileRepository) GetByID(ctx context.Context, uid string) (*models.Profile, error) {
	if uid == "" {
		return nil, errors.New("uid cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("profile with ID '%s' not found: %w", uid, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile with ID '%s': %w", uid, err)
	}
	return decodeProfile(docSnap)
}

// Update applies a partial update. The document must exist.
func (r *firestoreProfileRepository) Update(ctx context.Context, uid string, fields map[string]interface{}) error {
	if uid == "" {
		return errors.New("uid cannot be empty for Update operation")
	}
	updates := make([]firestore.Update, 0, len(fields)+1)
	for path, value := range fields {
		if path == models.FieldEmail {
			if s, ok := value.(string); ok {
				value = NormalizeEmail(s)
			}
		}
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	updates = append(updates, firestore.Update{Path: models.FieldUpdatedAt, Value: firestore.ServerTimestamp})

	if _, err := r.client.Collection(usersCollection).Doc(uid).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("profile with ID '%s' not found: %w", uid, ErrNotFound)
		}
		return fmt.Errorf("failed to update profile with ID '%s': %w", uid, err)
	}
	return nil
}

// Delete removes the profile document. Deleting a missing document is not an error.
func (r *firestoreProfileRepository) Delete(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.New("uid cannot be empty for Delete operation")
	}
	if _, err := r.client.Collection(usersCollection).Doc(uid).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete profile with ID '%s': %w", uid, err)
	}
	return nil
}

// List returns every profile. Ordering is left to the caller.
func (r *firestoreProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	return r.collect(r.client.Collection(usersCollection).Documents(ctx))
}

// ListByRoles returns profiles whose role is any of roles.
func (r *firestoreProfileRepository) ListByRoles(ctx context.Context, roles ...models.Role) ([]*models.Profile, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	values := make([]string, len(roles))
	for i, role := range roles {
		values[i] = string(role)
	}
	return r.collect(r.client.Collection(usersCollection).Where(models.FieldRole, "in", values).Documents(ctx))
}

// RecordLogin bumps metadata.loginCount atomically and stamps metadata.lastLoginAt.
func (r *firestoreProfileRepository) RecordLogin(ctx context.Context, uid string) error {
	return r.Update(ctx, uid, map[string]interface{}{
		models.FieldLoginCount:  firestore.Increment(1),
		models.FieldLastLoginAt: firestore.ServerTimestamp,
	})
}

func (r *firestoreProfileRepository) collect(iter *firestore.DocumentIterator) ([]*models.Profile, error) {
	defer iter.Stop()
	var profiles []*models.Profile
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate profiles: %w", err)
		}
		p, err := decodeProfile(doc)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func decodeProfile(doc *firestore.DocumentSnapshot) (*models.Profile, error) {
	var p models.Profile
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile data for ID '%s': %w", doc.Ref.ID, err)
	}
	p.UID = doc.Ref.ID // Ensure UID is populated from the document reference ID
	return &p, nil
}
