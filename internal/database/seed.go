package database

import (
	"fmt"

	"jamdash/internal/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var defaultCollections = []string{
	"My List",
	models.LikedCollectionName,
	"Companies to Ignore",
}

// Seed creates the default collections and, when demo is set and the company
// table is empty, a demo corpus to browse. Safe to call on every startup.
func Seed(db *gorm.DB, demo bool) error {
	for _, name := range defaultCollections {
		var count int64
		if err := db.Model(&models.CompanyCollection{}).
			Where("collection_name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check collection %q: %w", name, err)
		}
		if count > 0 {
			continue
		}
		col := models.CompanyCollection{
			ID:             uuid.New().String(),
			CollectionName: name,
		}
		if err := db.Create(&col).Error; err != nil {
			return fmt.Errorf("failed to create collection %q: %w", name, err)
		}
		log.WithField("collection", name).Info("Created default collection")
	}

	if !demo {
		return nil
	}

	var companies int64
	if err := db.Model(&models.Company{}).Count(&companies).Error; err != nil {
		return fmt.Errorf("failed to count companies: %w", err)
	}
	if companies > 0 {
		return nil
	}
	return seedDemoCompanies(db)
}

// seedDemoCompanies fills an empty database with a browsable corpus: every
// company lands in "My List", every tenth one is liked.
func seedDemoCompanies(db *gorm.DB) error {
	const total = 10000
	const batch = 1000

	var myList, liked models.CompanyCollection
	if err := db.Where("collection_name = ?", "My List").First(&myList).Error; err != nil {
		return err
	}
	if err := db.Where("collection_name = ?", models.LikedCollectionName).First(&liked).Error; err != nil {
		return err
	}

	for offset := 0; offset < total; offset += batch {
		rows := make([]models.Company, 0, batch)
		edges := make([]models.CompanyCollectionAssociation, 0, batch+batch/10)
		for i := offset; i < offset+batch; i++ {
			id := i + 1
			rows = append(rows, models.Company{
				ID:          id,
				CompanyName: fmt.Sprintf("Company %d", id),
			})
			edges = append(edges, models.CompanyCollectionAssociation{
				CompanyID:    id,
				CollectionID: myList.ID,
			})
			if id%10 == 0 {
				edges = append(edges, models.CompanyCollectionAssociation{
					CompanyID:    id,
					CollectionID: liked.ID,
				})
			}
		}
		if err := db.CreateInBatches(&rows, 250).Error; err != nil {
			return fmt.Errorf("failed to seed companies: %w", err)
		}
		if err := db.CreateInBatches(&edges, 250).Error; err != nil {
			return fmt.Errorf("failed to seed associations: %w", err)
		}
	}

	log.WithField("companies", total).Info("Seeded demo data")
	return nil
}
