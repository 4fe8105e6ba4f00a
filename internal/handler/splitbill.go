package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yudopr11/yupi/internal/llm"
	"github.com/yudopr11/yupi/internal/middleware"
	"github.com/yudopr11/yupi/internal/util"

	"github.com/gin-gonic/gin"
)

const maxBillImageSize = 5 * 1024 * 1024

var allowedBillImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/jpg",
	"image/webp",
}

// SplitBillHandler analyzes a bill photo and splits it between the people
// named in the order description.
type SplitBillHandler struct {
	LLM *llm.Client
}

func NewSplitBillHandler(llmClient *llm.Client) *SplitBillHandler {
	return &SplitBillHandler{LLM: llmClient}
}

// AnalyzeBill takes a multipart form with an image and an order description.
// A caller that already has a textual bill description can pass it as
// image_description and skip the vision step entirely.
func (h *SplitBillHandler) AnalyzeBill(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}
	if h.LLM == nil {
		util.Error(c, http.StatusServiceUnavailable, util.CodeServerErr, "Bill analysis is not configured")
		return
	}

	description := c.PostForm("description")
	if description == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "description is required")
		return
	}

	imageDescription := strings.TrimSpace(c.PostForm("image_description"))
	imageTokens := 0

	if imageDescription == "" {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "image is required")
			return
		}

		contentType := fileHeader.Header.Get("Content-Type")
		allowed := false
		for _, t := range allowedBillImageTypes {
			if contentType == t {
				allowed = true
				break
			}
		}
		if !allowed {
			util.Error(c, http.StatusUnsupportedMediaType, util.CodeInvalidParam,
				fmt.Sprintf("File type not allowed. Only %s are allowed", strings.Join(allowedBillImageTypes, ", ")))
			return
		}
		if fileHeader.Size > maxBillImageSize {
			util.Error(c, http.StatusRequestEntityTooLarge, util.CodeInvalidParam,
				"File size too large. Maximum size allowed is 5MB")
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Could not read image")
			return
		}
		defer file.Close()

		imageBytes, err := io.ReadAll(file)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Could not read image")
			return
		}

		dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(imageBytes))

		imageDescription, imageTokens, err = h.LLM.DescribeBillImage(c.Request.Context(), dataURL)
		if err != nil {
			var notABill *llm.ErrNotABill
			if errors.As(err, &notABill) {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid bill image")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr,
					"An error occurred while analyzing the bill: "+err.Error())
			}
			return
		}
	}

	analysis, analysisTokens, err := h.LLM.AnalyzeBill(c.Request.Context(), imageDescription, description)
	if err != nil {
		var analysisErr *llm.AnalysisError
		if errors.As(err, &analysisErr) {
			util.Error(c, http.StatusUnprocessableEntity, util.CodeInvalidParam, analysisErr.Reason)
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr,
				"An error occurred while analyzing the bill: "+err.Error())
		}
		return
	}

	util.Success(c, util.Response{
		"split_details":     analysis.SplitDetails,
		"total_bill":        analysis.TotalBill,
		"subtotal":          analysis.Subtotal,
		"subtotal_vat":      analysis.SubtotalVAT,
		"subtotal_other":    analysis.SubtotalOther,
		"subtotal_discount": analysis.SubtotalDiscount,
		"currency":          analysis.Currency,
		"image_description": imageDescription,
		"token_count": gin.H{
			"image":    imageTokens,
			"analysis": analysisTokens,
		},
	})
}
