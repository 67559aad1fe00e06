package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/contactbook/internal/bulk"
	"github.com/contactbook/internal/sheet"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipart 边界与表单头占用的额外空间
const multipartOverhead int64 = 1 << 20

// ImportContacts 接收 multipart 字段 file 中的 Excel 文件并批量导入
func (a *API) ImportContacts(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.maxUpload+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, a.text(c, "The uploaded file is too large", "上传文件过大"))
			return
		}
		respondError(c, http.StatusBadRequest, a.text(c, "Please upload a valid Excel file", "请上传有效的Excel文件"))
		return
	}

	if !sheet.SupportedExtension(fileHeader.Filename) {
		respondError(c, http.StatusBadRequest, a.text(c, "Only .xlsx and .xls files are supported", "仅支持.xlsx和.xls格式的Excel文件"))
		return
	}
	if fileHeader.Size > a.maxUpload {
		respondError(c, http.StatusRequestEntityTooLarge, a.text(c, "The uploaded file is too large", "上传文件过大"))
		return
	}
	if fileHeader.Size == 0 {
		respondError(c, http.StatusBadRequest, a.text(c, "Please upload a valid Excel file", "请上传有效的Excel文件"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Unable to read the uploaded file", "无法读取上传的文件"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, a.maxUpload+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, a.text(c, "Unable to read the uploaded file", "无法读取上传的文件"))
		return
	}

	// 客户端断开不应中止已开始的导入事务
	ctx := context.WithoutCancel(c.Request.Context())
	result, err := a.transfer.Import(ctx, data)
	if err != nil {
		var formatErr *sheet.FormatError
		var txErr *bulk.TransactionError
		switch {
		case errors.As(err, &formatErr):
			respondError(c, http.StatusBadRequest, a.text(c, "Unable to read the Excel file: ", "无法解析Excel文件: ")+formatErr.Error())
		case errors.As(err, &txErr):
			a.log.Error("contact import rolled back",
				zap.String("runId", txErr.RunID),
				zap.String("file", fileHeader.Filename),
				zap.Error(err),
			)
			respondError(c, http.StatusInternalServerError, a.text(c, "Import failed and all changes were rolled back: ", "导入失败，所有数据已回滚: ")+err.Error())
		default:
			c.Error(err)
			respondError(c, http.StatusInternalServerError, a.text(c, "Import failed", "导入失败"))
		}
		return
	}

	failures := make([]gin.H, 0, result.FailedCount)
	for _, failure := range result.Failures() {
		failures = append(failures, gin.H{"row": failure.Row, "reason": failure.Reason()})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        a.text(c, "Import completed", "导入成功"),
		"runId":          result.RunID,
		"processedCount": result.ProcessedCount,
		"totalRowCount":  result.TotalRowCount,
		"skippedCount":   result.SkippedCount,
		"failedCount":    result.FailedCount,
		"failures":       failures,
	})
}

// ExportContacts 将全部联系人导出为 xlsx 附件
func (a *API) ExportContacts(c *gin.Context) {
	data, err := a.transfer.Export(c.Request.Context())
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, a.text(c, "Export failed", "导出失败"))
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": a.transfer.Format().FileName})
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, sheet.ContentType, data)
}
