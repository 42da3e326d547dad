package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"historyScope/internal/model"
)

//go:embed schema.sql
var schema string

// Store persists token and pool catalogs.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the catalog tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertTokens inserts or updates token catalog entries of one chain.
func (s *Store) UpsertTokens(ctx context.Context, chainID int64, tokens []model.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, token := range tokens {
		batch.Queue(`
			INSERT INTO catalog_tokens (
				chain_id, address, symbol, decimals, listed, price_usd, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			ON CONFLICT (chain_id, address)
			DO UPDATE SET
				symbol = EXCLUDED.symbol,
				decimals = EXCLUDED.decimals,
				listed = EXCLUDED.listed,
				price_usd = EXCLUDED.price_usd,
				updated_at = now()
		`,
			chainID,
			strings.ToLower(token.Address),
			token.Symbol,
			int16(token.Decimals),
			token.Listed,
			token.Price,
		)
	}
	return s.sendBatch(ctx, batch)
}

// UpsertPools inserts or updates pool catalog entries of one chain.
func (s *Store) UpsertPools(ctx context.Context, chainID int64, pools []model.PoolDescriptor) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		batch.Queue(`
			INSERT INTO catalog_pools (
				chain_id, lp_address, symbol, token0, token1, decimals, pool_type, tick_spacing, gauge, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
			ON CONFLICT (chain_id, lp_address)
			DO UPDATE SET
				symbol = EXCLUDED.symbol,
				token0 = EXCLUDED.token0,
				token1 = EXCLUDED.token1,
				decimals = EXCLUDED.decimals,
				pool_type = EXCLUDED.pool_type,
				tick_spacing = EXCLUDED.tick_spacing,
				gauge = EXCLUDED.gauge,
				updated_at = now()
		`,
			chainID,
			strings.ToLower(pool.LPAddress),
			pool.Symbol,
			strings.ToLower(pool.Token0),
			strings.ToLower(pool.Token1),
			int16(pool.Decimals),
			string(pool.Type),
			pool.TickSpacing,
			strings.ToLower(pool.Gauge),
		)
	}
	return s.sendBatch(ctx, batch)
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadTokens returns the token catalog of one chain.
func (s *Store) LoadTokens(ctx context.Context, chainID int64) ([]model.Token, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT address, symbol, decimals, listed, price_usd
		FROM catalog_tokens
		WHERE chain_id = $1
		ORDER BY address
	`, chainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []model.Token
	for rows.Next() {
		var (
			token    model.Token
			decimals int16
		)
		if err := rows.Scan(&token.Address, &token.Symbol, &decimals, &token.Listed, &token.Price); err != nil {
			return nil, err
		}
		token.Decimals = uint8(decimals)
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// LoadPools returns the pool catalog of one chain.
func (s *Store) LoadPools(ctx context.Context, chainID int64) ([]model.PoolDescriptor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT lp_address, symbol, token0, token1, decimals, pool_type, tick_spacing, gauge
		FROM catalog_pools
		WHERE chain_id = $1
		ORDER BY lp_address
	`, chainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pools []model.PoolDescriptor
	for rows.Next() {
		var (
			pool     model.PoolDescriptor
			decimals int16
			poolType string
		)
		if err := rows.Scan(&pool.LPAddress, &pool.Symbol, &pool.Token0, &pool.Token1, &decimals, &poolType, &pool.TickSpacing, &pool.Gauge); err != nil {
			return nil, err
		}
		pool.Decimals = uint8(decimals)
		pool.Type = model.PoolType(poolType)
		pools = append(pools, pool)
	}
	return pools, rows.Err()
}
