// Package gormstore implements the gateway store on GORM/Postgres. Every
// successful write publishes the corresponding change event so the feed
// mirrors what the database accepted, not what the caller intended.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/internal/models"
)

type Store struct {
	db  *gorm.DB
	pub gateway.Publisher
	log *slog.Logger
}

func New(db *gorm.DB, pub gateway.Publisher, log *slog.Logger) *Store {
	return &Store{db: db, pub: pub, log: log}
}

// publish sends a change event. Publish failures do not fail the write that
// produced them; subscribers recover on their next full refetch.
func (s *Store) publish(ctx context.Context, ev gateway.Event) {
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Error("feed publish failed", "table", ev.Table, "type", ev.Type, "error", err)
	}
}

// --- Profiles ---

func (s *Store) ProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, gateway.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return &p, nil
}

func (s *Store) SearchProfiles(ctx context.Context, excludeID, query string, limit int) ([]models.Profile, error) {
	var out []models.Profile
	pattern := "%" + query + "%"
	err := s.db.WithContext(ctx).
		Where("id <> ?", excludeID).
		Where("username ILIKE ? OR display_name ILIKE ?", pattern, pattern).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return out, nil
}

func (s *Store) UpdatePresence(ctx context.Context, userID string, online bool) error {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", userID).
		Updates(map[string]any{"is_online": online, "last_seen": now})
	if res.Error != nil {
		return fmt.Errorf("update presence: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gateway.ErrNotFound
	}
	p, err := s.ProfileByID(ctx, userID)
	if err != nil {
		return err
	}
	s.publish(ctx, gateway.NewEvent(gateway.TableProfiles, gateway.EventUpdate, p))
	return nil
}

// --- Friendships ---

func (s *Store) FriendshipsFor(ctx context.Context, userID string) ([]models.Friendship, error) {
	var out []models.Friendship
	err := s.db.WithContext(ctx).
		Preload("Friend").
		Where("user_id = ?", userID).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("fetch friendships: %w", err)
	}
	return out, nil
}

func (s *Store) InsertFriendships(ctx context.Context, rows []models.Friendship) error {
	now := time.Now().UTC()
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		rows[i].CreatedAt = now
		rows[i].Friend = nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("insert friendships: %w", err)
	}
	for _, row := range rows {
		s.publish(ctx, gateway.NewEvent(gateway.TableFriendships, gateway.EventInsert, row))
	}
	return nil
}

func (s *Store) DeleteFriendship(ctx context.Context, userID, friendID string) error {
	err := s.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, friendID, friendID, userID).
		Delete(&models.Friendship{}).Error
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	return nil
}

// --- Friend requests ---

func (s *Store) PendingRequestsTo(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	err := s.db.WithContext(ctx).
		Preload("FromUser").
		Where("to_user_id = ? AND status = ?", userID, models.FriendRequestPending).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("fetch received requests: %w", err)
	}
	return out, nil
}

func (s *Store) PendingRequestsFrom(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	err := s.db.WithContext(ctx).
		Preload("ToUser").
		Where("from_user_id = ? AND status = ?", userID, models.FriendRequestPending).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("fetch sent requests: %w", err)
	}
	return out, nil
}

func (s *Store) InsertFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = models.FriendRequestPending
	}
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("insert friend request: %w", err)
	}
	s.publish(ctx, gateway.NewEvent(gateway.TableFriendRequests, gateway.EventInsert, req))
	return nil
}

// ResolveFriendRequest transitions a pending request to a terminal status.
// The pending guard lives in the WHERE clause so a second resolve cannot
// overwrite a terminal state.
func (s *Store) ResolveFriendRequest(ctx context.Context, id string, status models.FriendRequestStatus) error {
	res := s.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", id, models.FriendRequestPending).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("resolve friend request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.FriendRequest{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("resolve friend request: %w", err)
		}
		if count == 0 {
			return gateway.ErrNotFound
		}
		return gateway.ErrRequestResolved
	}
	var req models.FriendRequest
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err == nil {
		s.publish(ctx, gateway.NewEvent(gateway.TableFriendRequests, gateway.EventUpdate, req))
	}
	return nil
}

// --- Messages ---

func (s *Store) MessagesBetween(ctx context.Context, userID, peerID string) ([]models.Message, error) {
	var out []models.Message
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, peerID, peerID, userID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	return out, nil
}

func (s *Store) InsertMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	s.publish(ctx, gateway.NewEvent(gateway.TableMessages, gateway.EventInsert, msg))
	return nil
}

// MarkThreadRead flips every unread message from sender to receiver and
// publishes one update event per flipped row, mirroring what a row-level
// change feed would emit.
func (s *Store) MarkThreadRead(ctx context.Context, senderID, receiverID string) error {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("mark thread read: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	err = s.db.WithContext(ctx).Model(&models.Message{}).
		Where("id IN ?", ids).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("mark thread read: %w", err)
	}
	var updated []models.Message
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&updated).Error; err != nil {
		s.log.Error("fetch updated messages for feed", "error", err)
		return nil
	}
	for _, m := range updated {
		s.publish(ctx, gateway.NewEvent(gateway.TableMessages, gateway.EventUpdate, m))
	}
	return nil
}

func (s *Store) UnreadMessagesFor(ctx context.Context, receiverID string) ([]models.Message, error) {
	var out []models.Message
	err := s.db.WithContext(ctx).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("fetch unread messages: %w", err)
	}
	return out, nil
}

var _ gateway.Store = (*Store)(nil)
