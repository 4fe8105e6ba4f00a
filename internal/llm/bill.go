package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const describeImagePrompt = `Analyze this image and determine if it's a bill/receipt:
Task:
1. First, determine if the image is a bill/receipt
2. If NOT a bill/receipt, output exactly "0"
3. If it IS a bill/receipt, provide a detailed description
Do not add any explanatory text or labels - just output the raw information.`

// ErrNotABill reports that the vision model decided the image is not a
// bill or receipt.
type ErrNotABill struct{}

func (e *ErrNotABill) Error() string { return "Invalid bill image" }

// DescribeBillImage sends the image to the vision model and returns its
// textual description plus the tokens spent. The model signals a non-bill
// image by answering "0".
func (c *Client) DescribeBillImage(ctx context.Context, imageDataURL string) (string, int, error) {
	content, tokens, err := c.chat(ctx, chatOptions{temperature: 0}, []Message{
		{Role: "user", Content: []map[string]any{
			TextPart(describeImagePrompt),
			ImagePart(imageDataURL),
		}},
	})
	if err != nil {
		return "", 0, err
	}

	if v, convErr := strconv.ParseFloat(strings.TrimSpace(content), 64); convErr == nil && v == 0 {
		return "", tokens, &ErrNotABill{}
	}
	return content, tokens, nil
}

// BillAnalysis is the parsed split produced by the analysis model. The raw
// per-person breakdown stays schemaless since person names are keys.
type BillAnalysis struct {
	SplitDetails     map[string]json.RawMessage `json:"split_details"`
	TotalBill        int64                      `json:"total_bill"`
	Subtotal         int64                      `json:"subtotal"`
	SubtotalVAT      int64                      `json:"subtotal_vat"`
	SubtotalOther    int64                      `json:"subtotal_other"`
	SubtotalDiscount int64                      `json:"subtotal_discount"`
	Currency         string                     `json:"currency"`
}

// AnalysisError reports that the model answered with an error or an
// incomplete result instead of a full split.
type AnalysisError struct {
	Reason string
}

func (e *AnalysisError) Error() string { return e.Reason }

const billAnalysisTemplate = `
You are analyzing a bill below
%s

with the following order details description:
%s

Task: Create a detailed breakdown of individual payments including items, shared costs, and adjustments.

1. Item Analysis:
- Pay careful attention to quantities (e.g., if bill shows "2 Nasi Goreng 110000", the unit price is 55000)
- For each item line:
    * Extract the quantity (number at the start of line)
    * Total price is shown in the amount column
    * Calculate unit price = total price / quantity
    * List each item with its UNIT price (not the total price)
- Ensure prices match exactly as shown in the bill after quantity calculation
- Do not include crossed-out prices (these are marketing displays, not actual prices)

2. Currency Detection:
- Identify and use the exact currency shown in the bill
- Format all monetary values consistently using the detected currency

3. Tax (VAT) Calculation:
- Use the VAT rate shown in the bill or from order details description
- Calculate individual VAT shares proportionally based on each person's order total
- Round VAT calculations to nearest integer

4. Service Charges & Additional Fees:
- Identify all service charges and additional fees
- Divide these costs equally among all individuals
- Include items like: service charge, packaging fees, delivery fees, etc.

5. Discount Handling:
For percentage-based discounts (e.g., "20%% off"):
- Calculate the total discount amount
- Distribute proportionally based on each person's order total

For fixed-amount discounts (e.g., "5000 off delivery"):
- Divide equally among all individuals

6. Individual Final Calculations:
- Calculate individual_total = sum of (unit_price x quantity) for each person's items
- Calculate vat_share = proportional VAT based on individual_total
- Calculate other_share = equal split of service charges and fees
- Calculate discount_share = proportional or equal split of discounts
- Calculate final_total = individual_total + vat_share + other_share - discount_share

7. Total Calculations:
- Calculate total_bill = sum of final_total for all individuals
- Calculate subtotal = sum of individual_total for all individuals
- Calculate subtotal_vat = sum of vat_share for all individuals
- Calculate subtotal_other = sum of other_share for all individuals
- Calculate subtotal_discount = sum of discount_share for all individuals

Important Notes:
- Always divide total item price by quantity to get the correct unit price
- Crossed out prices are marketing displays, NOT discounts
- All calculations must be mathematically precise
- All monetary values must be in integer format
- The sum of all individual shares must equal the total bill

Return the analysis in this exact JSON structure:
{
"split_details": {
    "person_name": {
        "items": [
            {"item": "exact_item_name_from_bill", "price": unit_price_after_quantity_calculation}
        ],
        "individual_total": integer,
        "vat_share": integer,
        "other_share": integer,
        "discount_share": integer,
        "final_total": integer
    }
},
"total_bill": integer,
"subtotal": integer,
"subtotal_vat": integer,
"subtotal_other": integer,
"subtotal_discount": integer,
"currency": "currency_code"
}

Ensure the response is valid JSON with no additional text or explanations.
`

// AnalyzeBill splits the described bill among the people in the order
// description and returns the breakdown plus the tokens spent.
func (c *Client) AnalyzeBill(ctx context.Context, imageDescription, orderDescription string) (*BillAnalysis, int, error) {
	prompt := fmt.Sprintf(billAnalysisTemplate, imageDescription, orderDescription)

	content, tokens, err := c.chat(ctx, chatOptions{model: c.analysisModel, temperature: 1}, []Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, 0, err
	}

	cleaned := cleanMarkdownWrapper(content)

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return nil, tokens, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	if raw, ok := probe["error"]; ok {
		var reason string
		_ = json.Unmarshal(raw, &reason)
		return nil, tokens, &AnalysisError{Reason: "The bill analysis failed: " + reason}
	}

	requiredFields := []string{
		"split_details", "total_bill", "subtotal", "subtotal_vat",
		"subtotal_other", "subtotal_discount", "currency",
	}
	var missing []string
	for _, field := range requiredFields {
		if _, ok := probe[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, tokens, &AnalysisError{
			Reason: "Missing required fields in analysis result: " + strings.Join(missing, ", "),
		}
	}

	var analysis BillAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, tokens, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	return &analysis, tokens, nil
}
