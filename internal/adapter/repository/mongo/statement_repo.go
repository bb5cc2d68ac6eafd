package mongo

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iho/ledgerbook/internal/domain"
)

// StatementLinesCollection holds imported bank statement lines.
const StatementLinesCollection = "statement_lines"

// StatementRepository implements usecase.StatementRepository on MongoDB.
type StatementRepository struct {
	provider CollectionProvider
}

// NewStatementRepository creates a new StatementRepository.
func NewStatementRepository(provider CollectionProvider) *StatementRepository {
	return &StatementRepository{provider: provider}
}

type statementLine struct {
	ID            string               `bson:"_id"`
	BankAccount   string               `bson:"bank_account"`
	Date          time.Time            `bson:"date"`
	Amount        primitive.Decimal128 `bson:"amount"`
	Description   string               `bson:"description"`
	Occurrence    int                  `bson:"occurrence"`
	Category      string               `bson:"category,omitempty"`
	Counterparty  string               `bson:"counterparty,omitempty"`
	AttachmentRef string               `bson:"attachment_ref,omitempty"`
	Lettrage      string               `bson:"lettrage,omitempty"`
	Status        string               `bson:"status"`
	ImportedAt    time.Time            `bson:"imported_at"`
}

// EnsureIndexes creates the natural-key index statement imports upsert against.
func (r *StatementRepository) EnsureIndexes(ctx context.Context) error {
	return r.collection().CreateIndexes(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "bank_account", Value: 1},
				{Key: "date", Value: 1},
				{Key: "amount", Value: 1},
				{Key: "description", Value: 1},
				{Key: "occurrence", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("statement_line_occurrence_key"),
		},
	})
}

// ListByBankAccount returns every line of a bank account in date order.
func (r *StatementRepository) ListByBankAccount(ctx context.Context, bankAccount string) ([]domain.Transaction, error) {
	cursor, err := r.collection().Find(ctx,
		bson.M{"bank_account": bankAccount},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", StatementLinesCollection, err)
	}

	var docs []statementLine
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", StatementLinesCollection, err)
	}

	transactions := make([]domain.Transaction, 0, len(docs))
	for _, doc := range docs {
		t, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	return transactions, nil
}

// BulkUpsert stores statement lines keyed on (bank account, date, amount, description,
// occurrence), so identical lines of one statement stay distinct while a re-import
// matches them again. Re-imported lines keep their id, status and lettrage.
// It returns the number of new lines.
func (r *StatementRepository) BulkUpsert(ctx context.Context, transactions []domain.Transaction) (int64, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()

	transactions = slices.Clone(transactions)
	domain.NumberOccurrences(transactions)

	models := make([]mongo.WriteModel, 0, len(transactions))
	for _, t := range transactions {
		doc, err := fromDomain(t, now)
		if err != nil {
			return 0, err
		}

		filter := bson.D{
			{Key: "bank_account", Value: doc.BankAccount},
			{Key: "date", Value: doc.Date},
			{Key: "amount", Value: doc.Amount},
			{Key: "description", Value: doc.Description},
			{Key: "occurrence", Value: doc.Occurrence},
		}
		update := bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "category", Value: doc.Category},
				{Key: "counterparty", Value: doc.Counterparty},
				{Key: "attachment_ref", Value: doc.AttachmentRef},
				{Key: "imported_at", Value: doc.ImportedAt},
			}},
			{Key: "$setOnInsert", Value: bson.D{
				{Key: "_id", Value: doc.ID},
				{Key: "status", Value: doc.Status},
				{Key: "lettrage", Value: doc.Lettrage},
			}},
		}

		models = append(models, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
	}

	result, err := r.collection().BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}

	return result.UpsertedCount, nil
}

func (r *StatementRepository) collection() DataStore {
	return r.provider.Collection(StatementLinesCollection)
}

func fromDomain(t domain.Transaction, importedAt time.Time) (statementLine, error) {
	amount, err := primitive.ParseDecimal128(t.Amount.String())
	if err != nil {
		return statementLine{}, fmt.Errorf("%w: amount %s: %v", domain.ErrInvalidTransaction, t.Amount, err)
	}

	y, m, d := t.Date.Date()

	return statementLine{
		ID:            t.ID,
		BankAccount:   t.BankAccount,
		Date:          time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Amount:        amount,
		Description:   t.Description,
		Occurrence:    t.Occurrence,
		Category:      t.Category,
		Counterparty:  t.Counterparty,
		AttachmentRef: t.AttachmentRef,
		Lettrage:      t.Lettrage,
		Status:        string(t.Status),
		ImportedAt:    importedAt,
	}, nil
}

func (doc statementLine) toDomain() (domain.Transaction, error) {
	amount, err := decimal.NewFromString(doc.Amount.String())
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("statement line %s amount: %w", doc.ID, err)
	}

	return domain.Transaction{
		ID:            doc.ID,
		BankAccount:   doc.BankAccount,
		Date:          doc.Date.UTC(),
		Amount:        amount,
		Description:   doc.Description,
		Occurrence:    doc.Occurrence,
		Category:      doc.Category,
		Counterparty:  doc.Counterparty,
		AttachmentRef: doc.AttachmentRef,
		Lettrage:      doc.Lettrage,
		Status:        domain.TransactionStatus(doc.Status),
	}, nil
}
