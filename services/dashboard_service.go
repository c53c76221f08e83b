package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Dosada05/pokernow/models"
	"github.com/Dosada05/pokernow/repositories"
	"golang.org/x/sync/errgroup"
)

// Tournaments listed on the dashboard.
var liveTournamentStatuses = []models.TournamentStatus{
	models.StatusWaiting, models.StatusRunning, models.StatusPaused, models.StatusBreak,
}

type DashboardService interface {
	GetDashboard(ctx context.Context, shopID string) (*models.Dashboard, error)
	ListShops(ctx context.Context) ([]models.ShopSummary, error)
	// GetShop returns one shop with its live occupancy.
	GetShop(ctx context.Context, shopID string) (*models.ShopSummary, error)
}

type dashboardService struct {
	shopRepo       repositories.ShopRepository
	tableRepo      repositories.TableRepository
	seatingRepo    repositories.SeatingRepository
	tournamentRepo repositories.TournamentRepository
}

func NewDashboardService(
	shopRepo repositories.ShopRepository,
	tableRepo repositories.TableRepository,
	seatingRepo repositories.SeatingRepository,
	tournamentRepo repositories.TournamentRepository,
) DashboardService {
	return &dashboardService{
		shopRepo:       shopRepo,
		tableRepo:      tableRepo,
		seatingRepo:    seatingRepo,
		tournamentRepo: tournamentRepo,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, shopID string) (*models.Dashboard, error) {
	var (
		shop        *models.Shop
		tables      []*models.Table
		counts      map[string]int
		tournaments []*models.Tournament
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		shop, err = s.shopRepo.GetByID(gctx, shopID)
		return err
	})
	g.Go(func() (err error) {
		tables, err = s.tableRepo.ListByShop(gctx, shopID)
		return err
	})
	g.Go(func() (err error) {
		counts, err = s.seatingRepo.CountActiveByShop(gctx, shopID)
		return err
	})
	g.Go(func() (err error) {
		tournaments, err = s.tournamentRepo.List(gctx, repositories.ListTournamentsFilter{
			ShopID:   &shopID,
			Statuses: liveTournamentStatuses,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrShopNotFound) {
			return nil, entityErr(ErrShopNotFound, EntityShop, shopID)
		}
		return nil, fmt.Errorf("failed to build dashboard for shop %s: %w", shopID, err)
	}

	stats, tableStats := aggregateTables(tables, counts)
	clocks := make([]models.ClockState, len(tournaments))
	for i, t := range tournaments {
		clocks[i] = t.ClockState()
	}
	return &models.Dashboard{
		Shop:        *shop,
		Stats:       stats,
		Tables:      tableStats,
		Tournaments: clocks,
	}, nil
}

func (s *dashboardService) ListShops(ctx context.Context) ([]models.ShopSummary, error) {
	shops, err := s.shopRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}

	summaries := make([]models.ShopSummary, len(shops))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, shop := range shops {
		i, shop := i, shop
		g.Go(func() error {
			summary, err := s.summarise(gctx, shop)
			if err != nil {
				return err
			}
			summaries[i] = *summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to summarise shops: %w", err)
	}
	return summaries, nil
}

func (s *dashboardService) GetShop(ctx context.Context, shopID string) (*models.ShopSummary, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, repositories.ErrShopNotFound) {
			return nil, entityErr(ErrShopNotFound, EntityShop, shopID)
		}
		return nil, fmt.Errorf("failed to load shop %s: %w", shopID, err)
	}
	summary, err := s.summarise(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise shop %s: %w", shopID, err)
	}
	return summary, nil
}

func (s *dashboardService) summarise(ctx context.Context, shop *models.Shop) (*models.ShopSummary, error) {
	tables, err := s.tableRepo.ListByShop(ctx, shop.ID)
	if err != nil {
		return nil, err
	}
	counts, err := s.seatingRepo.CountActiveByShop(ctx, shop.ID)
	if err != nil {
		return nil, err
	}
	stats, _ := aggregateTables(tables, counts)
	return &models.ShopSummary{
		Shop:           *shop,
		CurrentPlayers: stats.CurrentPlayers,
		ActiveTables:   stats.ActiveTables,
		TotalTables:    stats.TotalTables,
		Congestion:     stats.Congestion,
	}, nil
}

func aggregateTables(tables []*models.Table, counts map[string]int) (models.DashboardStats, []models.TableStats) {
	stats := models.DashboardStats{TotalTables: len(tables)}
	tableStats := make([]models.TableStats, 0, len(tables))
	for _, t := range tables {
		current := counts[t.ID]
		stats.CurrentPlayers += current
		stats.TotalSeats += t.MaxSeats
		if t.IsActive {
			stats.ActiveTables++
		}
		tableStats = append(tableStats, models.TableStats{
			TableID:        t.ID,
			Name:           t.Name,
			IsActive:       t.IsActive,
			CurrentPlayers: current,
			MaxSeats:       t.MaxSeats,
			Occupancy:      percent(current, t.MaxSeats),
			Congestion:     TableCongestion(current, t.MaxSeats),
		})
	}
	stats.OccupancyRate = percent(stats.CurrentPlayers, stats.TotalSeats)
	stats.Congestion = ShopCongestion(stats.CurrentPlayers, stats.TotalSeats)
	return stats, tableStats
}

func percent(n, of int) int {
	if of <= 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(of) * 100))
}

// ShopCongestion grades a shop: high from 80% of all seats, medium from 50%.
func ShopCongestion(current, totalSeats int) models.CongestionLevel {
	return congestion(current, totalSeats, 0.8, 0.5)
}

// TableCongestion grades a table: high when full, medium from half full.
func TableCongestion(current, maxSeats int) models.CongestionLevel {
	return congestion(current, maxSeats, 1.0, 0.5)
}

func congestion(current, seats int, high, medium float64) models.CongestionLevel {
	if seats <= 0 {
		return models.CongestionLow
	}
	ratio := float64(current) / float64(seats)
	switch {
	case ratio >= high:
		return models.CongestionHigh
	case ratio >= medium:
		return models.CongestionMedium
	}
	return models.CongestionLow
}
