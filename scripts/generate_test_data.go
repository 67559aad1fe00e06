package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/contactbook/internal/config"
	"github.com/contactbook/internal/db"
	"github.com/contactbook/internal/service"
	"github.com/contactbook/internal/sheet"
)

type sampleContact struct {
	name       string
	bookmarked bool
	details    []service.DetailInput
}

var sampleContacts = []sampleContact{
	{name: "张伟", bookmarked: true, details: []service.DetailInput{
		{Type: "电话", Value: "13800138000"},
		{Type: "邮箱", Value: "zhangwei@example.com"},
	}},
	{name: "李娜", details: []service.DetailInput{
		{Type: "微信", Value: "lina_wx"},
	}},
	{name: "王芳", bookmarked: true},
	{name: "Alice Smith", details: []service.DetailInput{
		{Type: "phone", Value: "+1-555-0100"},
		{Type: "email", Value: "alice@example.com"},
		{Type: "address", Value: "221B Baker Street"},
	}},
	{name: "Bob Lee", details: []service.DetailInput{
		{Type: "phone", Value: "+1-555-0199"},
	}},
}

// 测试数据生成器
func main() {
	var workbook string
	flag.StringVar(&workbook, "workbook", "", "also write a sample import workbook to this path")
	flag.Parse()

	cfg := config.Load()
	if err := db.Init(db.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseDSN,
		Silent: true,
	}); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	created, err := createTestContacts(service.NewContactService(db.DB))
	if err != nil {
		log.Fatal("生成联系人失败:", err)
	}
	fmt.Printf("✅ 新增联系人 %d 个\n", created)

	if workbook != "" {
		if err := writeSampleWorkbook(workbook, sheet.FormatFor(cfg.SheetLanguage)); err != nil {
			log.Fatal("生成示例表格失败:", err)
		}
		fmt.Printf("✅ 示例表格已写入 %s\n", workbook)
	}

	fmt.Println("测试数据生成完成！")
}

// 创建测试联系人，已存在同名联系人时跳过
func createTestContacts(contacts *service.ContactService) (int, error) {
	existing, err := contacts.List()
	if err != nil {
		return 0, err
	}
	names := make(map[string]struct{}, len(existing))
	for _, contact := range existing {
		names[contact.Name] = struct{}{}
	}

	created := 0
	for _, sample := range sampleContacts {
		if _, ok := names[sample.name]; ok {
			continue
		}
		if _, err := contacts.Create(service.ContactInput{
			Name:         sample.name,
			IsBookmarked: sample.bookmarked,
			Details:      sample.details,
		}); err != nil {
			return created, fmt.Errorf("create %s: %w", sample.name, err)
		}
		created++
	}
	return created, nil
}

// 写入一份示例导入表格，包含一个空名称行与一个超长字段行
func writeSampleWorkbook(path string, format sheet.Format) error {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return errors.New("sample workbook must use the .xlsx extension")
	}

	rows := make([]sheet.OutputRow, 0, len(sampleContacts)+2)
	for _, sample := range sampleContacts {
		token := format.BookmarkToken(sample.bookmarked)
		if len(sample.details) == 0 {
			rows = append(rows, sheet.OutputRow{Name: sample.name, Bookmarked: token, DetailType: format.None, DetailValue: format.None})
			continue
		}
		for _, detail := range sample.details {
			rows = append(rows, sheet.OutputRow{Name: sample.name, Bookmarked: token, DetailType: detail.Type, DetailValue: detail.Value})
		}
	}
	rows = append(rows,
		sheet.OutputRow{Name: "", Bookmarked: format.Yes, DetailType: "phone", DetailValue: "000"},
		sheet.OutputRow{Name: strings.Repeat("长", db.MaxContactNameLength+1), Bookmarked: format.No, DetailType: "phone", DetailValue: "111"},
	)

	data, err := sheet.NewCodec(format).Encode(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
