package contracts

import (
	"context"

	"github.com/ninelmnts/assetscan/asset_scanner/models"
)

type IAssetScanner interface {
	Scan(ctx context.Context, roots []models.RootSpec) *models.ScanRun
	ScanRoot(ctx context.Context, root models.RootSpec) ([]models.FileRecord, error)
}
