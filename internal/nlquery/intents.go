package nlquery

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IntentUnknown is returned when neither the classifier nor the similarity
// fallback clears its threshold.
const IntentUnknown = "unknown"

// IntentExamples pairs an intent with its canonical example phrasings. The
// declaration order of intents — and of examples within an intent — is the
// scan order of the similarity fallback, and therefore part of the
// contract.
type IntentExamples struct {
	Name     string   `yaml:"intent"`
	Examples []string `yaml:"examples"`
}

// IntentsFromYAML parses an intent-corpus override.
func IntentsFromYAML(data []byte) ([]IntentExamples, error) {
	var out []IntentExamples
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse intent corpus: %w", err)
	}
	return out, nil
}

// DefaultIntents is the built-in query-intent example corpus.
func DefaultIntents() []IntentExamples {
	return []IntentExamples{
		{"highest_sales", []string{
			"What's the highest sales in quantity for January?",
			"Show me the highest amount of sales last month",
			"Which product had the highest sales in quantity?",
			"What was our best-selling item by revenue?",
			"Find the maximum sales figure in the dataset",
			"What is the peak sales value?",
			"Show highest revenue product",
		}},
		{"top_products", []string{
			"What are the most selling products last month?",
			"Show me the top 3 products by sales",
			"Which items sold the most in March?",
			"List the best-performing products by quantity",
			"What products had the highest sales volume?",
			"Rank products by revenue",
			"Which products are trending?",
		}},
		{"city_analysis", []string{
			"Which city has the highest sales of product X?",
			"Show me the top 3 cities with highest amount of sales for product Y",
			"What areas are selling the most of our premium products?",
			"Rank cities by total sales volume",
			"Where are we selling the most units of Z?",
			"Compare sales between cities",
			"Show city-wise breakdown",
		}},
		{"time_comparison", []string{
			"Compare sales between January and February",
			"How did last month's sales compare to the previous month?",
			"Show me month-over-month growth in sales",
			"Which month had better performance for product X?",
			"What's the trend in sales over the last quarter?",
			"Show yearly comparison",
			"Compare quarterly performance",
		}},
		{"tax_calculation", []string{
			"Calculate total tax at 18% for all sales",
			"What's the GST amount for transactions with 12% tax rate?",
			"Sum all tax amounts in the dataset",
			"How much VAT did we collect at 20%?",
			"Calculate tax liability for all sales in Q1",
			"Show CGST and SGST breakup",
			"Total tax collected",
			"What is the total taxable amount",
			"Sum of all taxable amounts",
			"Total taxable amount",
			"Taxable amount sum",
			"Add up all taxable amounts",
			"Total tax base",
			"Sum of taxable values",
		}},
		{"trend_analysis", []string{
			"Show me the sales trend over the last 6 months",
			"What's the growth rate of product X?",
			"Plot the monthly sales progression",
			"How are sales trending this quarter?",
			"Compare year-over-year performance",
			"Show growth patterns",
			"Identify seasonal trends",
		}},
		{"product_insights", []string{
			"Which products have declining sales?",
			"Show me products with stock below threshold",
			"What's the profit margin for each product?",
			"Which products are seasonal?",
			"Identify top performing product categories",
			"Show product performance metrics",
			"List underperforming items",
		}},
		{"summary_statistics", []string{
			"Give me a summary of the sales data",
			"Show basic statistics of the dataset",
			"What are the average sales per month?",
			"Calculate mean and median sales",
			"Show data distribution",
			"Summarize quarterly performance",
		}},
	}
}
