package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finance-dashboard/backend/internal/models"
)

const documentColumns = "id, user_id, file_name, file_path, public_url, file_size, content_type, uploaded_at"

type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository создает репозиторий метаданных документов.
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create сохраняет метаданные загруженного файла.
func (r *DocumentRepository) Create(ctx context.Context, doc models.Document) (models.Document, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO documents (user_id, file_name, file_path, public_url, file_size, content_type)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+documentColumns,
		doc.UserID, doc.FileName, doc.FilePath, doc.PublicURL, doc.FileSize, doc.ContentType,
	)

	created, err := scanDocument(row)
	if err != nil {
		return created, mapPgError(err)
	}
	return created, nil
}

// GetByID возвращает документ пользователя.
func (r *DocumentRepository) GetByID(ctx context.Context, userID, documentID uuid.UUID) (models.Document, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+documentColumns+`
		 FROM documents
		 WHERE id = $1 AND user_id = $2`,
		documentID, userID,
	)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return doc, ErrNotFound
		}
		return doc, err
	}
	return doc, nil
}

// ListByUser возвращает документы пользователя, новые первыми.
func (r *DocumentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+documentColumns+`
		 FROM documents
		 WHERE user_id = $1
		 ORDER BY uploaded_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

// Rename меняет отображаемое имя файла; путь в хранилище не меняется.
func (r *DocumentRepository) Rename(ctx context.Context, userID, documentID uuid.UUID, fileName string) (models.Document, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE documents
		 SET file_name = $3
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+documentColumns,
		documentID, userID, fileName,
	)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return doc, ErrNotFound
		}
		return doc, err
	}
	return doc, nil
}

// Delete удаляет метаданные документа пользователя.
func (r *DocumentRepository) Delete(ctx context.Context, userID, documentID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM documents
		 WHERE id = $1 AND user_id = $2`,
		documentID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanDocument(row pgx.Row) (models.Document, error) {
	var doc models.Document
	err := row.Scan(&doc.ID, &doc.UserID, &doc.FileName, &doc.FilePath, &doc.PublicURL, &doc.FileSize, &doc.ContentType, &doc.UploadedAt)
	return doc, err
}
