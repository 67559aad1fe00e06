package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/contactbook/internal/db"
	"github.com/contactbook/internal/sheet"
	"gorm.io/gorm"
)

var (
	// ErrContactNotFound 在指定联系人不存在时返回
	ErrContactNotFound = errors.New("contact not found")
	// ErrInvalidContact 在必填字段缺失或超长时返回
	ErrInvalidContact = errors.New("invalid contact input")
	// ErrDetailExists 在同一联系人下已存在相同类型与值的联系方式时返回
	ErrDetailExists = errors.New("contact detail already exists")
)

// ContactService 负责联系人与联系方式的单条增删改查
type ContactService struct {
	db *gorm.DB
}

// ContactInput 描述创建联系人时可设置的字段
type ContactInput struct {
	Name         string
	IsBookmarked bool
	Details      []DetailInput
}

// DetailInput 描述一条联系方式
type DetailInput struct {
	Type  string
	Value string
}

// NewContactService 构造 ContactService
func NewContactService(gdb *gorm.DB) *ContactService {
	return &ContactService{db: gdb}
}

// List 返回全部联系人（含联系方式），按 ID 升序
func (s *ContactService) List() ([]db.Contact, error) {
	return s.list(s.db)
}

// ListBookmarked 返回已收藏的联系人
func (s *ContactService) ListBookmarked() ([]db.Contact, error) {
	return s.list(s.db.Where("is_bookmarked = ?", true))
}

func (s *ContactService) list(query *gorm.DB) ([]db.Contact, error) {
	var contacts []db.Contact
	if err := query.
		Preload("Details", func(tx *gorm.DB) *gorm.DB { return tx.Order("contact_details.id ASC") }).
		Order("contacts.id ASC").
		Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// Get 根据 ID 获取联系人（含联系方式）
func (s *ContactService) Get(id uint) (*db.Contact, error) {
	var contact db.Contact
	if err := s.db.
		Preload("Details", func(tx *gorm.DB) *gorm.DB { return tx.Order("contact_details.id ASC") }).
		First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return &contact, nil
}

// Create 新建联系人，附带的联系方式按 (Type, Value) 去重
func (s *ContactService) Create(input ContactInput) (*db.Contact, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateContactName(name); err != nil {
		return nil, err
	}

	details, err := normalizeDetails(input.Details)
	if err != nil {
		return nil, err
	}

	contact := db.Contact{Name: name, IsBookmarked: input.IsBookmarked}
	for _, detail := range dedupeDetails(details) {
		contact.Details = append(contact.Details, db.ContactDetail{Type: detail.Type, Value: detail.Value})
	}

	if err := s.db.Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return &contact, nil
}

// SetBookmark 标记或取消收藏
func (s *ContactService) SetBookmark(id uint, bookmarked bool) (*db.Contact, error) {
	// MySQL 对未变化的行返回 RowsAffected=0，不能据此判断是否存在
	if err := ensureContactExists(s.db, id); err != nil {
		return nil, err
	}
	if err := s.db.Model(&db.Contact{}).Where("id = ?", id).Update("is_bookmarked", bookmarked).Error; err != nil {
		return nil, fmt.Errorf("update bookmark: %w", err)
	}
	return s.Get(id)
}

// AddDetail 为联系人添加单个联系方式
func (s *ContactService) AddDetail(contactID uint, input DetailInput) (*db.ContactDetail, error) {
	details, err := normalizeDetails([]DetailInput{input})
	if err != nil {
		return nil, err
	}

	var detail db.ContactDetail
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureContactExists(tx, contactID); err != nil {
			return err
		}

		exists, err := detailExists(tx, contactID, details[0])
		if err != nil {
			return err
		}
		if exists {
			return ErrDetailExists
		}

		detail = db.ContactDetail{ContactID: contactID, Type: details[0].Type, Value: details[0].Value}
		if err := tx.Create(&detail).Error; err != nil {
			return fmt.Errorf("create contact detail: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// AddDetails 为联系人批量添加联系方式，已存在或重复的条目被跳过。
// 返回实际新增的数量。
func (s *ContactService) AddDetails(contactID uint, inputs []DetailInput) (int, error) {
	details, err := normalizeDetails(inputs)
	if err != nil {
		return 0, err
	}

	created := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureContactExists(tx, contactID); err != nil {
			return err
		}

		for _, input := range dedupeDetails(details) {
			exists, err := detailExists(tx, contactID, input)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			detail := db.ContactDetail{ContactID: contactID, Type: input.Type, Value: input.Value}
			if err := tx.Create(&detail).Error; err != nil {
				return fmt.Errorf("create contact detail (type=%s): %w", input.Type, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// Delete 删除联系人及其全部联系方式
func (s *ContactService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureContactExists(tx, id); err != nil {
			return err
		}
		if err := tx.Where("contact_id = ?", id).Delete(&db.ContactDetail{}).Error; err != nil {
			return fmt.Errorf("delete contact details: %w", err)
		}
		if err := tx.Delete(&db.Contact{}, id).Error; err != nil {
			return fmt.Errorf("delete contact: %w", err)
		}
		return nil
	})
}

func ensureContactExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&db.Contact{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check contact: %w", err)
	}
	if count == 0 {
		return ErrContactNotFound
	}
	return nil
}

func detailExists(tx *gorm.DB, contactID uint, input DetailInput) (bool, error) {
	var count int64
	if err := tx.Model(&db.ContactDetail{}).
		Where("contact_id = ? AND type = ? AND value = ?", contactID, input.Type, input.Value).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check contact detail: %w", err)
	}
	return count > 0, nil
}

func validateContactName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidContact)
	}
	if utf8.RuneCountInString(name) > db.MaxContactNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidContact, db.MaxContactNameLength)
	}
	return nil
}

func normalizeDetails(inputs []DetailInput) ([]DetailInput, error) {
	out := make([]DetailInput, 0, len(inputs))
	for _, input := range inputs {
		detail := DetailInput{Type: strings.TrimSpace(input.Type), Value: strings.TrimSpace(input.Value)}
		switch {
		case detail.Type == "":
			return nil, fmt.Errorf("%w: detail type is required", ErrInvalidContact)
		case detail.Value == "":
			return nil, fmt.Errorf("%w: detail value is required", ErrInvalidContact)
		case detail.Type == sheet.NoDetail:
			// 导出时 "-" 表示没有联系方式，再导入会被当作空行处理
			return nil, fmt.Errorf("%w: detail type %q is reserved", ErrInvalidContact, sheet.NoDetail)
		case utf8.RuneCountInString(detail.Type) > db.MaxDetailTypeLength:
			return nil, fmt.Errorf("%w: detail type exceeds %d characters", ErrInvalidContact, db.MaxDetailTypeLength)
		case utf8.RuneCountInString(detail.Value) > db.MaxDetailValueLength:
			return nil, fmt.Errorf("%w: detail value exceeds %d characters", ErrInvalidContact, db.MaxDetailValueLength)
		}
		out = append(out, detail)
	}
	return out, nil
}

func dedupeDetails(details []DetailInput) []DetailInput {
	seen := make(map[DetailInput]struct{}, len(details))
	out := make([]DetailInput, 0, len(details))
	for _, detail := range details {
		if _, ok := seen[detail]; ok {
			continue
		}
		seen[detail] = struct{}{}
		out = append(out, detail)
	}
	return out
}
