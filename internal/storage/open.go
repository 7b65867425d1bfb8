// Package storage picks the MallRepository backend named by the config.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"mall_admin/internal/domain"
	"mall_admin/internal/shared"
	"mall_admin/internal/storage/jsonfile"
	mysqlrepo "mall_admin/internal/storage/mysql"
)

// Open returns the configured repository and a func that releases it.
func Open(cfg shared.Config) (domain.MallRepository, func(), error) {
	if cfg.StorageBackend == shared.StorageMySQL {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql open: %w", err)
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		log.Info().Msg("database connection ok")
		return mysqlrepo.New(db), func() { _ = db.Close() }, nil
	}
	store, err := jsonfile.Open(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open data dir %s: %w", cfg.DataDir, err)
	}
	log.Info().Str("dir", cfg.DataDir).Msg("using JSON file storage")
	return store, func() {}, nil
}
