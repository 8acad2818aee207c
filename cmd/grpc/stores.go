package main

import (
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/fekuna/omnipos-inventory-service/internal/catalog"
	catalogRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/customer"
	custRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/customer/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	invRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync"
	syncRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/offlinesync/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-inventory-service/internal/receiving"
	rcvRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/receiving/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/sale"
	saleRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/sale/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/store/memory"
)

// repositories is every persistence port the usecases need, backed by one driver.
type repositories struct {
	Tx        database.TxManager
	Inventory inventory.Repository
	Batches   inventory.BatchRepository
	Drugs     catalog.DrugRepository
	Branches  catalog.BranchRepository
	Customers customer.Repository
	Sales     sale.Repository
	Orders    receiving.Repository
	Changes   offlinesync.Repository
	close     func() error
}

func (r *repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

func openRepositories(cfg *config.Config) (*repositories, error) {
	switch cfg.Server.StoreDriver {
	case "memory":
		store := memory.NewStore()
		return &repositories{
			Tx:        store,
			Inventory: store.Inventory(),
			Batches:   store.Inventory(),
			Drugs:     store.Drugs(),
			Branches:  store.Branches(),
			Customers: store.Customers(),
			Sales:     store.Sales(),
			Orders:    store.PurchaseOrders(),
			Changes:   store.Changes(),
		}, nil
	case "postgres":
		db, err := postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		invRepo := invRepoPkg.NewPGRepository(db)
		return &repositories{
			Tx:        postgres.NewTxManager(db),
			Inventory: invRepo,
			Batches:   invRepo,
			Drugs:     catalogRepoPkg.NewDrugPGRepository(db),
			Branches:  catalogRepoPkg.NewBranchPGRepository(db),
			Customers: custRepoPkg.NewPGRepository(db),
			Sales:     saleRepoPkg.NewPGRepository(db),
			Orders:    rcvRepoPkg.NewPGRepository(db),
			Changes:   syncRepoPkg.NewPGRepository(db),
			close:     db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Server.StoreDriver)
}
