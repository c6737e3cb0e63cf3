package file

const (
	selectColumns = `
		SELECT f.id, f.user_id, u.username, f.original_name, f.file_size, f.mime_type,
		       f.blob_handle, f.is_public, f.download_count, f.created_at
		FROM files f
		JOIN users u ON u.id = f.user_id
	`

	SelectFileByID = selectColumns + `
		WHERE f.id = $1
	`
	SelectAccessibleFile = selectColumns + `
		WHERE f.id = $1 AND (f.user_id = $2 OR f.is_public)
	`
	SelectOwnerFiles = selectColumns + `
		WHERE f.user_id = $1
		ORDER BY f.id ASC
	`
	CountOwnerFiles = `SELECT COUNT(*) FROM files WHERE user_id = $1`
	InsertFile      = `
		INSERT INTO files (user_id, original_name, file_size, mime_type, blob_handle, is_public)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	IncrementDownloadCount = `
		UPDATE files
		SET download_count = download_count + 1
		WHERE id = $1
	`
	DeleteFileByID = `DELETE FROM files WHERE id = $1`

	countMatching = `
		SELECT COUNT(*)
		FROM files f
		JOIN users u ON u.id = f.user_id
	`
)
