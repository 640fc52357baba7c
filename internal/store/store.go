// Package store persists finished-game results to postgres. The store is
// optional: the server runs without one and simply refuses result uploads.
package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/coopmp/lobbysync/pkg/types"
)

type GameResult struct {
	ID          uint `gorm:"primarykey"`
	CreatedAt   time.Time
	LobbyID     string `gorm:"index"`
	WinnerID    string
	WinnerName  string
	WinnerScore int
	Scores      []PlayerScore `gorm:"foreignKey:GameResultID"`
}

type PlayerScore struct {
	ID           uint `gorm:"primarykey"`
	GameResultID uint `gorm:"index"`
	PlayerID     string
	PlayerName   string
	Score        int
}

type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open connects to postgres and migrates the result tables.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.AutoMigrate(&GameResult{}, &PlayerScore{}); err != nil {
		return nil, fmt.Errorf("migrate result tables: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// RecordResult stores one finished game's outcome.
func (s *Store) RecordResult(ctx context.Context, lobbyID string, req types.GameResultRequest) error {
	result := resultFromRequest(lobbyID, req)

	if err := s.db.WithContext(ctx).Create(&result).Error; err != nil {
		return fmt.Errorf("record result: %w", err)
	}

	s.log.Info("game result recorded",
		zap.String("lobby_id", lobbyID),
		zap.String("winner", req.WinnerName),
		zap.Int("score", req.WinnerScore))
	return nil
}

// Results returns every recorded result for a lobby, newest first.
func (s *Store) Results(ctx context.Context, lobbyID string) ([]GameResult, error) {
	var results []GameResult
	err := s.db.WithContext(ctx).
		Preload("Scores").
		Where("lobby_id = ?", lobbyID).
		Order("created_at desc").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	return results, nil
}

func resultFromRequest(lobbyID string, req types.GameResultRequest) GameResult {
	scores := make([]PlayerScore, len(req.Scores))
	for i, s := range req.Scores {
		scores[i] = PlayerScore{
			PlayerID:   s.PlayerID,
			PlayerName: s.PlayerName,
			Score:      s.Score,
		}
	}
	return GameResult{
		LobbyID:     lobbyID,
		WinnerID:    req.WinnerID,
		WinnerName:  req.WinnerName,
		WinnerScore: req.WinnerScore,
		Scores:      scores,
	}
}
