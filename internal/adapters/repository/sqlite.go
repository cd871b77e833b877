package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/okian/riftbalance/internal/domain/model"
	"github.com/okian/riftbalance/internal/domain/stats"
	"github.com/okian/riftbalance/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore persists players and games in a SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	o := newOptions(opts)
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty sqlite path", ErrInvalidPath)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	if err := migrateUp(path); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		path, o.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer; a single connection serialises access.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if o.logger != nil {
		o.logger.Info(ctx, "sqlite store opened", logger.String("path", path))
	}
	return &SQLiteStore{db: db, opts: o}, nil
}

func migrateUp(path string) error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("access migrations: %w", err)
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+filepath.ToSlash(path))
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

const playerColumns = `id, name, riot_game_name, riot_tag_line, riot_puuid,
	games_played, kills, deaths, assists, wins, win_rate,
	lane_stats, champion_stats, solo_rank, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*model.Player, error) {
	var (
		p                model.Player
		lanes, champs    string
		rank             sql.NullString
		created, updated int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Riot.GameName, &p.Riot.TagLine, &p.Riot.PUUID,
		&p.GamesPlayed, &p.Kills, &p.Deaths, &p.Assists, &p.Wins, &p.WinRate,
		&lanes, &champs, &rank, &created, &updated); err != nil {
		return nil, err
	}
	p.StatsByLane = map[model.Lane]model.LaneStats{}
	p.StatsByChampion = map[string]model.ChampionStats{}
	if err := json.Unmarshal([]byte(lanes), &p.StatsByLane); err != nil {
		return nil, fmt.Errorf("decode lane stats of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(champs), &p.StatsByChampion); err != nil {
		return nil, fmt.Errorf("decode champion stats of %s: %w", p.ID, err)
	}
	if rank.Valid && rank.String != "" {
		p.SoloRank = &model.SoloRank{}
		if err := json.Unmarshal([]byte(rank.String), p.SoloRank); err != nil {
			return nil, fmt.Errorf("decode solo rank of %s: %w", p.ID, err)
		}
	}
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	return &p, nil
}

func encodeStats(p *model.Player) (lanes, champs string, err error) {
	lb, err := json.Marshal(p.StatsByLane)
	if err != nil {
		return "", "", err
	}
	cb, err := json.Marshal(p.StatsByChampion)
	if err != nil {
		return "", "", err
	}
	return string(lb), string(cb), nil
}

func encodeRank(r *model.SoloRank) (sql.NullString, error) {
	if r == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func (s *SQLiteStore) CreatePlayer(ctx context.Context, p *model.Player) error {
	defer observeUpdate(time.Now())
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidPlayer)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	c := clonePlayer(p)
	c.Name = name
	now := s.opts.now()
	c.CreatedAt, c.UpdatedAt = now, now

	lanes, champs, err := encodeStats(c)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	rank, err := encodeRank(c.SoloRank)
	if err != nil {
		return fmt.Errorf("encode rank: %w", err)
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM players WHERE id = ? OR name_key = ?`, c.ID, strings.ToLower(name)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check player: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrPlayerExists, name)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO players (`+playerColumns+`, name_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Riot.GameName, c.Riot.TagLine, c.Riot.PUUID,
		c.GamesPlayed, c.Kills, c.Deaths, c.Assists, c.Wins, c.WinRate,
		lanes, champs, rank, now.UnixNano(), now.UnixNano(), strings.ToLower(name))
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	*p = *c
	return nil
}

func (s *SQLiteStore) GetPlayer(ctx context.Context, id string) (*model.Player, error) {
	defer observeQuery(time.Now())
	return s.getPlayer(ctx, s.db, `id = ?`, id)
}

func (s *SQLiteStore) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	defer observeQuery(time.Now())
	return s.getPlayer(ctx, s.db, `name_key = ?`, strings.ToLower(strings.TrimSpace(name)))
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) getPlayer(ctx context.Context, q querier, where, arg string) (*model.Player, error) {
	p, err := scanPlayer(q.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("load player: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	defer observeQuery(time.Now())
	return listPlayers(ctx, s.db)
}

type rowsQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listPlayers(ctx context.Context, q rowsQuerier) ([]*model.Player, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+playerColumns+` FROM players ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var out []*model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FindPlayers(ctx context.Context, ids []string) ([]*model.Player, error) {
	defer observeQuery(time.Now())
	out := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		p, err := s.getPlayer(ctx, s.db, `id = ?`, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *SQLiteStore) DeletePlayer(ctx context.Context, id string) error {
	defer observeUpdate(time.Now())
	res, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) UpdateRiot(ctx context.Context, id string, acct model.RiotAccount, rank *model.SoloRank) (*model.Player, error) {
	defer observeUpdate(time.Now())
	enc, err := encodeRank(rank)
	if err != nil {
		return nil, fmt.Errorf("encode rank: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE players SET riot_game_name = ?, riot_tag_line = ?, riot_puuid = ?,
		solo_rank = ?, updated_at = ? WHERE id = ?`,
		acct.GameName, acct.TagLine, acct.PUUID, enc, s.opts.now().UnixNano(), id)
	if err != nil {
		return nil, fmt.Errorf("update riot account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return s.getPlayer(ctx, s.db, `id = ?`, id)
}

func (s *SQLiteStore) RecordGame(ctx context.Context, g model.Game) error {
	defer observeUpdate(time.Now())
	if err := g.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM games WHERE id = ?`, g.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check game: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrGameExists, g.ID)
	}

	players := make([]*model.Player, 0, len(g.Participants))
	for _, part := range g.Participants {
		p, err := s.getPlayer(ctx, tx, `id = ?`, part.PlayerID)
		if err != nil {
			return err
		}
		stats.Apply(p, &g, part)
		p.UpdatedAt = s.opts.now()
		players = append(players, p)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO games (id, winning_side, played_at) VALUES (?, ?, ?)`,
		g.ID, string(g.WinningSide), g.PlayedAt.UTC().UnixNano()); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	for i, part := range g.Participants {
		if _, err := tx.ExecContext(ctx, `INSERT INTO game_participants
			(game_id, player_id, side, lane, champion, kills, deaths, assists, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID, part.PlayerID, string(part.Side), string(part.Lane), part.Champion,
			part.Kills, part.Deaths, part.Assists, i); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}
	for _, p := range players {
		if err := writeStats(ctx, tx, p); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit game: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func writeStats(ctx context.Context, db execer, p *model.Player) error {
	lanes, champs, err := encodeStats(p)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	res, err := db.ExecContext(ctx, `UPDATE players SET games_played = ?, kills = ?, deaths = ?, assists = ?,
		wins = ?, win_rate = ?, lane_stats = ?, champion_stats = ?, updated_at = ? WHERE id = ?`,
		p.GamesPlayed, p.Kills, p.Deaths, p.Assists, p.Wins, p.WinRate, lanes, champs,
		p.UpdatedAt.UnixNano(), p.ID)
	if err != nil {
		return fmt.Errorf("update stats of %s: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, p.ID)
	}
	return nil
}

func (s *SQLiteStore) ListGames(ctx context.Context) ([]model.Game, error) {
	defer observeQuery(time.Now())
	return listGames(ctx, s.db)
}

func listGames(ctx context.Context, q rowsQuerier) ([]model.Game, error) {
	rows, err := q.QueryContext(ctx, `SELECT g.id, g.winning_side, g.played_at,
		p.player_id, p.side, p.lane, p.champion, p.kills, p.deaths, p.assists
		FROM games g JOIN game_participants p ON p.game_id = g.id
		ORDER BY g.played_at, g.rowid, p.position`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []model.Game
	for rows.Next() {
		var (
			id, winner, side, lane string
			played                 int64
			part                   model.Participant
		)
		if err := rows.Scan(&id, &winner, &played, &part.PlayerID, &side, &lane,
			&part.Champion, &part.Kills, &part.Deaths, &part.Assists); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		part.Side, part.Lane = model.Side(side), model.Lane(lane)
		if n := len(out); n == 0 || out[n-1].ID != id {
			out = append(out, model.Game{
				ID:          id,
				WinningSide: model.Side(winner),
				PlayedAt:    time.Unix(0, played).UTC(),
			})
		}
		last := &out[len(out)-1]
		last.Participants = append(last.Participants, part)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Recalculate(ctx context.Context) (int, error) {
	defer observeUpdate(time.Now())
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	players, err := listPlayers(ctx, tx)
	if err != nil {
		return 0, err
	}
	games, err := listGames(ctx, tx)
	if err != nil {
		return 0, err
	}
	stats.Recalculate(players, games)

	now := s.opts.now()
	for _, p := range players {
		p.UpdatedAt = now
		if err := writeStats(ctx, tx, p); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit stats: %w", err)
	}
	return len(players), nil
}

func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		if s.opts.logger != nil {
			s.opts.logger.Warn(ctx, "count players failed", logger.Error(err))
		}
		return 0
	}
	return n
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
