package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// NoResultsSummary is the summary given for an empty result set.
const NoResultsSummary = "No results found for your query."

const fallbackExplanation = "Generated Cypher query for your question."

// summarySampleSize caps how many result rows are shown to the model.
const summarySampleSize = 10

// Translation is a question rendered as Cypher.
type Translation struct {
	Explanation string
	Cypher      string
}

// Translate asks the model for a Cypher query answering question, given a
// rendering of the schema. The returned query is untrusted text.
func (c *Client) Translate(ctx context.Context, question, schema string) (*Translation, error) {
	prompt := fmt.Sprintf(translatePrompt, schema, question)
	content, err := c.Complete(ctx, "You are a Neo4j Cypher expert.", prompt, 0.3, 500)
	if err != nil {
		return nil, fmt.Errorf("translate question: %w", err)
	}
	t := ParseTranslation(content)
	if t.Cypher == "" {
		return nil, fmt.Errorf("translate question: no Cypher in model reply")
	}
	return t, nil
}

// ParseTranslation splits a reply of the form "EXPLANATION: ... CYPHER: ...".
// Replies without both markers fall back to the lines from the first one that
// starts with a Cypher clause keyword.
func ParseTranslation(content string) *Translation {
	if strings.Contains(content, "EXPLANATION:") && strings.Contains(content, "CYPHER:") {
		before, after, _ := strings.Cut(content, "CYPHER:")
		return &Translation{
			Explanation: strings.TrimSpace(strings.Replace(before, "EXPLANATION:", "", 1)),
			Cypher:      stripFences(after),
		}
	}

	lines := strings.Split(content, "\n")
	start := -1
	for i, line := range lines {
		if startsWithClause(line) {
			start = i
			break
		}
	}
	t := &Translation{Explanation: fallbackExplanation}
	if start >= 0 {
		t.Cypher = stripFences(strings.Join(lines[start:], "\n"))
	}
	return t
}

var clauseKeywords = []string{"MATCH", "RETURN", "WHERE", "WITH", "CREATE", "MERGE", "OPTIONAL", "UNWIND", "CALL"}

func startsWithClause(line string) bool {
	upper := strings.ToUpper(strings.TrimSpace(line))
	for _, kw := range clauseKeywords {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

// Summarize describes results in business terms. An empty result set is
// answered locally without calling the model.
func (c *Client) Summarize(ctx context.Context, question, cypher string, results []map[string]any) (string, error) {
	if len(results) == 0 {
		return NoResultsSummary, nil
	}
	sample := results
	if len(sample) > summarySampleSize {
		sample = sample[:summarySampleSize]
	}
	data, err := json.Marshal(sample)
	if err != nil {
		return "", fmt.Errorf("marshal result sample: %w", err)
	}

	prompt := fmt.Sprintf(summaryPrompt, question, cypher, data, len(results))
	summary, err := c.Complete(ctx, "You are a data analyst providing business insights.", prompt, 0.5, 300)
	if err != nil {
		return "", fmt.Errorf("summarize results: %w", err)
	}
	return summary, nil
}

// ToSQL renders a Cypher query as equivalent relational SQL for readers who
// know SQL better than Cypher.
func (c *Client) ToSQL(ctx context.Context, cypher, question string) (string, error) {
	prompt := fmt.Sprintf(sqlPrompt, question, cypher)
	sql, err := c.Complete(ctx, "You are a database expert converting Cypher to SQL. Return only valid SQL code.", prompt, 0.3, 500)
	if err != nil {
		return "", fmt.Errorf("render sql: %w", err)
	}
	return stripFences(sql), nil
}

// stripFences removes a surrounding markdown code block and its language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], " ({") {
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

const translatePrompt = `You write Cypher queries for a Neo4j banking data catalog.

Schema (table: column (type)):
%s
Question: %s

The graph holds:
- Data nodes: Client, Bank_account, Card_detail, Card_transaction, Loan_record, Employee, Branche, Customer_support, Online_transaction
- Metadata nodes: Table, Column, CDE, Region
- Relationships: HAS_ACCOUNT, HAS_CARD, HAS_LOAN, HAS_TRANSACTION, HAS_COLUMN, IS_CDE_FOR, BELONGS_TO_REGION, LOADS_INTO, JOINS

Write one read-only Cypher query that answers the question and explain briefly what it does.

Answer exactly as:
EXPLANATION: <explanation>
CYPHER: <query>
`

const summaryPrompt = `Summarize these query results for a business reader.

Question: %s
Cypher: %s
Sample rows: %s
Total rows: %d

Keep it short and state what the data shows.`

const sqlPrompt = `Rewrite this Neo4j Cypher query as an equivalent SQL query (PostgreSQL/MySQL compatible).

Question: %s

Cypher:
%s

Assume this relational schema:
- clients (client_id, first_name, last_name, email_address, phone_number, date_of_birth, address, city, state, zip_code, country, account_opening_date)
- bank_accounts (account_id, client_id, account_no, balance_amount, account_category, account_opening_date, account_status)
- account_types (account_category, min_balance_req, interest_rate, monthly_fee)
- card_details (card_id, client_id, card_number, card_type, card_status, card_issue_date, card_expiry_date)
- card_transactions (transaction_id, card_id, merchant_name, transaction_amount, transaction_date, transaction_status)
- loan_records (loan_id, client_id, loan_amount, interest_rate, loan_status, loan_start_date, loan_end_date, monthly_payment)
- employees (employee_id, emp_first_name, emp_last_name, emp_role, emp_salary, emp_hire_date, branch_id)
- branches (branch_id, branch_name, branch_address, branch_city, branch_state, branch_zip, branch_phone)
- customer_support (ticket_id, client_id, issue_category, issue_description, ticket_status, ticket_created_date, ticket_resolved_date)
- online_transactions (online_txn_id, account_id, txn_amount, txn_date, txn_status, payment_method)

Join keys: clients.client_id to bank_accounts, card_details, loan_records and customer_support; card_details.card_id to card_transactions; employees.branch_id to branches; bank_accounts.account_id to online_transactions; bank_accounts.account_category to account_types.

Return only the SQL query.`
