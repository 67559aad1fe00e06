package handler

import (
	"github.com/contactbook/internal/locale"
	"github.com/contactbook/internal/service"
	"github.com/contactbook/internal/sheet"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultMaxUploadBytes int64 = 10 << 20

// Options 控制导入导出相关的行为
type Options struct {
	// SheetLanguage 决定表头、收藏标记与导出文件名使用的语言
	SheetLanguage  string
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	contacts  *service.ContactService
	transfer  *service.TransferService
	language  string
	maxUpload int64
	log       *zap.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	language := locale.NormalizeLanguage(opts.SheetLanguage)
	if language == "" {
		language = locale.LanguageEnglish
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	registerJSONFieldNames()

	return &API{
		db:        gdb,
		contacts:  service.NewContactService(gdb),
		transfer:  service.NewTransferService(gdb, sheet.FormatFor(language), log),
		language:  language,
		maxUpload: maxUpload,
		log:       log,
	}
}
