package collections

import (
	"errors"
	"fmt"

	"jamdash/internal/models"

	"gorm.io/gorm"
)

// Service handles collection browsing and curation: paginated listings with
// like state, explicit add/remove of companies, and like/unlike.
type Service struct {
	db *gorm.DB
}

// NewService creates a new collections service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListCompanies returns one page of the global company list, ordered by id.
func (s *Service) ListCompanies(offset, limit int) ([]CompanyView, error) {
	var companies []models.Company
	if err := s.db.Order("id ASC").Limit(limit).Offset(offset).Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return s.withLikedFlags(companies)
}

// ListCollections returns metadata for every collection
func (s *Service) ListCollections() ([]CollectionMetadata, error) {
	var cols []models.CompanyCollection
	if err := s.db.Order("created_at ASC").Find(&cols).Error; err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	out := make([]CollectionMetadata, 0, len(cols))
	for _, col := range cols {
		var total int64
		if err := s.db.Model(&models.CompanyCollectionAssociation{}).
			Where("collection_id = ?", col.ID).Count(&total).Error; err != nil {
			return nil, fmt.Errorf("failed to count collection %s: %w", col.ID, err)
		}
		out = append(out, CollectionMetadata{
			ID:             col.ID,
			CollectionName: col.CollectionName,
			Total:          total,
		})
	}
	return out, nil
}

// GetCollectionPage returns one page of a collection's membership, ordered
// by company id.
func (s *Service) GetCollectionPage(collectionID string, offset, limit int) (*CollectionPage, error) {
	col, err := s.getCollection(collectionID)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.db.Model(&models.CompanyCollectionAssociation{}).
		Where("collection_id = ?", col.ID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count collection members: %w", err)
	}

	var companies []models.Company
	err = s.db.
		Joins("JOIN company_collection_associations a ON a.company_id = companies.id").
		Where("a.collection_id = ?", col.ID).
		Order("companies.id ASC").
		Limit(limit).Offset(offset).
		Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list collection members: %w", err)
	}

	views, err := s.withLikedFlags(companies)
	if err != nil {
		return nil, err
	}

	return &CollectionPage{
		ID:             col.ID,
		CollectionName: col.CollectionName,
		Companies:      views,
		Total:          total,
	}, nil
}

// AddCompanies inserts the given companies into a collection, skipping any
// that are already members. Returns the number actually added.
func (s *Service) AddCompanies(companyIDs []int, collectionID string) (int, string, error) {
	col, err := s.getCollection(collectionID)
	if err != nil {
		return 0, "", err
	}

	var found int64
	if err := s.db.Model(&models.Company{}).Where("id IN ?", companyIDs).Count(&found).Error; err != nil {
		return 0, "", fmt.Errorf("failed to verify companies: %w", err)
	}
	if int(found) != len(companyIDs) {
		return 0, "", ErrCompanyNotFound
	}

	existing, err := s.existingMembers(companyIDs, col.ID)
	if err != nil {
		return 0, "", err
	}

	edges := make([]models.CompanyCollectionAssociation, 0, len(companyIDs))
	for _, companyID := range companyIDs {
		if _, ok := existing[companyID]; ok {
			continue
		}
		edges = append(edges, models.CompanyCollectionAssociation{
			CompanyID:    companyID,
			CollectionID: col.ID,
		})
	}

	if len(edges) > 0 {
		if err := s.db.Create(&edges).Error; err != nil {
			return 0, "", fmt.Errorf("failed to add companies: %w", err)
		}
	}
	return len(edges), col.CollectionName, nil
}

// RemoveCompanies removes the given companies from a collection. Returns the
// number removed; a request matching nothing is an error.
func (s *Service) RemoveCompanies(companyIDs []int, collectionID string) (int, string, error) {
	col, err := s.getCollection(collectionID)
	if err != nil {
		return 0, "", err
	}

	existing, err := s.existingMembers(companyIDs, col.ID)
	if err != nil {
		return 0, "", err
	}
	if len(existing) == 0 {
		return 0, "", ErrNoAssociations
	}

	err = s.db.Where("collection_id = ? AND company_id IN ?", col.ID, companyIDs).
		Delete(&models.CompanyCollectionAssociation{}).Error
	if err != nil {
		return 0, "", fmt.Errorf("failed to remove companies: %w", err)
	}
	return len(existing), col.CollectionName, nil
}

// LikeCompany adds a company to the Liked Companies collection. Liking an
// already-liked company is a soft no-op, not an error.
func (s *Service) LikeCompany(companyID int) (bool, string, error) {
	liked, err := s.likedCollection()
	if err != nil {
		return false, "", err
	}

	existing, err := s.existingMembers([]int{companyID}, liked.ID)
	if err != nil {
		return false, "", err
	}
	if len(existing) > 0 {
		return false, "Company already liked", nil
	}

	edge := models.CompanyCollectionAssociation{CompanyID: companyID, CollectionID: liked.ID}
	if err := s.db.Create(&edge).Error; err != nil {
		return false, "", fmt.Errorf("failed to like company: %w", err)
	}
	return true, "Company liked successfully", nil
}

// UnlikeCompany removes a company from the Liked Companies collection
func (s *Service) UnlikeCompany(companyID int) (bool, string, error) {
	liked, err := s.likedCollection()
	if err != nil {
		return false, "", err
	}

	existing, err := s.existingMembers([]int{companyID}, liked.ID)
	if err != nil {
		return false, "", err
	}
	if len(existing) == 0 {
		return false, "Company not in liked collection", nil
	}

	err = s.db.Where("collection_id = ? AND company_id = ?", liked.ID, companyID).
		Delete(&models.CompanyCollectionAssociation{}).Error
	if err != nil {
		return false, "", fmt.Errorf("failed to unlike company: %w", err)
	}
	return true, "Company unliked successfully", nil
}

func (s *Service) getCollection(collectionID string) (*models.CompanyCollection, error) {
	var col models.CompanyCollection
	err := s.db.Where("id = ?", collectionID).First(&col).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("collection %s: %w", collectionID, ErrCollectionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return &col, nil
}

func (s *Service) likedCollection() (*models.CompanyCollection, error) {
	var col models.CompanyCollection
	err := s.db.Where("collection_name = ?", models.LikedCollectionName).First(&col).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%q: %w", models.LikedCollectionName, ErrCollectionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load liked collection: %w", err)
	}
	return &col, nil
}

// existingMembers returns the subset of companyIDs already in the collection
func (s *Service) existingMembers(companyIDs []int, collectionID string) (map[int]struct{}, error) {
	var ids []int
	err := s.db.Model(&models.CompanyCollectionAssociation{}).
		Where("collection_id = ? AND company_id IN ?", collectionID, companyIDs).
		Pluck("company_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query associations: %w", err)
	}

	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// withLikedFlags resolves the liked flag for a slice of companies in one
// query against the Liked Companies collection.
func (s *Service) withLikedFlags(companies []models.Company) ([]CompanyView, error) {
	views := make([]CompanyView, 0, len(companies))
	if len(companies) == 0 {
		return views, nil
	}

	liked, err := s.likedCollection()
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(companies))
	for _, c := range companies {
		ids = append(ids, c.ID)
	}
	likedSet, err := s.existingMembers(ids, liked.ID)
	if err != nil {
		return nil, err
	}

	for _, c := range companies {
		_, isLiked := likedSet[c.ID]
		views = append(views, CompanyView{
			ID:          c.ID,
			CompanyName: c.CompanyName,
			Liked:       isLiked,
		})
	}
	return views, nil
}
