package remote

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"quranstudy/internal/badges"
	"quranstudy/internal/common"
	"quranstudy/internal/logging"
	"quranstudy/internal/models"
)

const usersCollection = "users"

// FirestoreStore implements Store on top of Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
	log    logging.Logger
}

// NewFirestoreStore connects to the given project. An empty
// credentialsFile falls back to application default credentials.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string, log logging.Logger) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to firestore: %w", err)
	}
	return &FirestoreStore{client: client, log: log}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) doc(uid string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(uid)
}

func (s *FirestoreStore) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	snap, err := s.doc(uid).Get(ctx)
	if err != nil {
		return nil, mapErr("get profile", err)
	}

	var p models.UserProfile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", uid, err)
	}
	p.UID = uid
	p.Normalize()
	return &p, nil
}

func (s *FirestoreStore) Create(ctx context.Context, uid, displayName, email string) error {
	data := defaultProfileDoc(displayName, email)
	data["createdAt"] = firestore.ServerTimestamp
	data["updatedAt"] = firestore.ServerTimestamp

	if _, err := s.doc(uid).Create(ctx, data); err != nil {
		return mapErr("create profile", err)
	}
	return nil
}

func (s *FirestoreStore) UpdateField(ctx context.Context, uid string, k models.Kind, value any) error {
	updates, err := buildUpdates(k, value)
	if err != nil {
		return err
	}

	if _, err := s.doc(uid).Update(ctx, updates); err != nil {
		return mapErr(fmt.Sprintf("update %s", k), err)
	}
	return nil
}

func (s *FirestoreStore) Merge(ctx context.Context, uid string, c models.Collections) error {
	data := collectionsDoc(c)
	data["updatedAt"] = firestore.ServerTimestamp

	if _, err := s.doc(uid).Set(ctx, data, firestore.MergeAll); err != nil {
		return mapErr("merge profile", err)
	}
	return nil
}

// Subscribe starts a snapshot listener for the document. The listener
// goroutine runs until stop is called or the stream fails; stream
// failures are logged, not surfaced, since the mirror remains
// authoritative without a listener.
func (s *FirestoreStore) Subscribe(ctx context.Context, uid string, onChange func(*models.UserProfile, error)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	iter := s.doc(uid).Snapshots(ctx)

	go func() {
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					s.log.Warn(ctx, "profile snapshot stream ended", "uid", uid, "error", err)
				}
				return
			}
			if !snap.Exists() {
				onChange(nil, common.ErrNotFound)
				continue
			}

			var p models.UserProfile
			if err := snap.DataTo(&p); err != nil {
				s.log.Warn(ctx, "undecodable profile snapshot", "uid", uid, "error", err)
				continue
			}
			p.UID = uid
			p.Normalize()
			onChange(&p, nil)
		}
	}()

	return cancel, nil
}

// buildUpdates produces the partial update for one collection kind.
// Badges carry earnedBadges in the same request so the pair changes
// atomically from the caller's point of view. earnedBadges itself is
// derived and cannot be written directly.
func buildUpdates(k models.Kind, value any) ([]firestore.Update, error) {
	if !k.Valid() {
		return nil, models.ErrUnknownKind(k)
	}
	if k == models.KindEarnedBadges {
		return nil, fmt.Errorf("%w: earnedBadges is derived from badges", common.ErrValidation)
	}

	updates := []firestore.Update{
		{Path: k.Key(), Value: value},
	}

	if k == models.KindBadges {
		list, ok := value.([]models.Badge)
		if !ok {
			return nil, fmt.Errorf("badges update: unexpected value type %T", value)
		}
		updates = append(updates, firestore.Update{
			Path:  models.KindEarnedBadges.Key(),
			Value: badges.DeriveEarned(list),
		})
	}

	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})
	return updates, nil
}

func collectionsDoc(c models.Collections) map[string]any {
	return map[string]any{
		models.KindPlans.Key():        c.Plans,
		models.KindBookmarks.Key():    c.Bookmarks,
		models.KindBadges.Key():       c.Badges,
		models.KindMistakes.Key():     c.Mistakes,
		models.KindEarnedBadges.Key(): c.EarnedBadges,
		models.KindQuizScore.Key():    c.QuizScore,
		models.KindTheme.Key():        c.Theme,
	}
}

func defaultProfileDoc(displayName, email string) map[string]any {
	data := collectionsDoc(models.DefaultCollections())
	data["displayName"] = displayName
	data["email"] = email
	return data
}

// mapErr classifies store failures into the shared sentinels so callers
// can match with errors.Is without importing grpc codes.
func mapErr(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, op)
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s: %v", common.ErrRemoteUnavailable, op, err)
	default:
		return fmt.Errorf("%w: %s: %v", common.ErrRemote, op, err)
	}
}
