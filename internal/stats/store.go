package stats

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SlickRick2121/Ten-K-sub000/internal/game"
)

// Recorder receives finished-game results and answers leaderboard queries.
// Implementations must never block game state; rooms call RecordGameEnd
// from their own goroutine.
type Recorder interface {
	RecordGameEnd(ctx context.Context, roomName string, res game.SeatResult) error
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error)
}

// GameResult is one seat's outcome of one finished game.
type GameResult struct {
	ID         uint `gorm:"primarykey"`
	CreatedAt  time.Time
	RoomName   string
	PlayerName string `gorm:"index"`
	Won        bool
	FinalScore int
	BestRound  int
	Busts      int
}

type LeaderboardRow struct {
	PlayerName string `json:"player_name"`
	Games      int    `json:"games"`
	Wins       int    `json:"wins"`
	BestScore  int    `json:"best_score"`
}

type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.AutoMigrate(&GameResult{}); err != nil {
		return nil, fmt.Errorf("migrate stats db: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) RecordGameEnd(ctx context.Context, roomName string, res game.SeatResult) error {
	row := GameResult{
		RoomName:   roomName,
		PlayerName: res.Name,
		Won:        res.Won,
		FinalScore: res.Score,
		BestRound:  res.BestRound,
		Busts:      res.Busts,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.log.Warn("record game end failed", zap.String("player", res.Name), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := s.db.WithContext(ctx).
		Model(&GameResult{}).
		Select("player_name, count(*) as games, sum(case when won then 1 else 0 end) as wins, max(final_score) as best_score").
		Group("player_name").
		Order("wins desc, best_score desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	return rows, nil
}

// Noop satisfies Recorder when no database is configured.
type Noop struct{}

func (Noop) RecordGameEnd(context.Context, string, game.SeatResult) error {
	return nil
}

func (Noop) Leaderboard(context.Context, int) ([]LeaderboardRow, error) {
	return []LeaderboardRow{}, nil
}
