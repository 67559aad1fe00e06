package service

import (
	"context"

	"github.com/contactbook/internal/bulk"
	"github.com/contactbook/internal/sheet"
	"github.com/contactbook/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransferService 串联表格编解码与批量导入/导出引擎
type TransferService struct {
	codec       *sheet.Codec
	coordinator *bulk.Coordinator
	flattener   *bulk.Flattener
	reader      bulk.ContactReader
}

// NewTransferService 以给定表格格式构造导入导出服务
func NewTransferService(gdb *gorm.DB, format sheet.Format, log *zap.Logger) *TransferService {
	gormStore := store.NewGorm(gdb)
	return &TransferService{
		codec:       sheet.NewCodec(format),
		coordinator: bulk.NewCoordinator(gormStore, bulk.NewReconciler(format), log),
		flattener:   bulk.NewFlattener(format),
		reader:      gormStore,
	}
}

// Format 返回当前使用的表格格式
func (s *TransferService) Format() sheet.Format {
	return s.codec.Format()
}

// Import 解码工作簿并在单个事务内逐行合并。
// 无法解析时返回 *sheet.FormatError，整批回滚时返回 *bulk.TransactionError。
func (s *TransferService) Import(ctx context.Context, data []byte) (*bulk.BatchResult, error) {
	rows, err := s.codec.Decode(data)
	if err != nil {
		return nil, err
	}
	return s.coordinator.RunImport(ctx, rows)
}

// Export 将全部联系人展开为行并编码为 xlsx
func (s *TransferService) Export(ctx context.Context) ([]byte, error) {
	rows, err := s.flattener.Export(ctx, s.reader)
	if err != nil {
		return nil, err
	}
	return s.codec.Encode(rows)
}
