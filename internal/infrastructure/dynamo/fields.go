package dynamo

// DynamoDB attribute names used in key conditions and update expressions.
const (
	fieldUserID       = "user_id"
	fieldEmail        = "email"
	fieldRole         = "role"
	fieldPasswordHash = "password_hash"
	fieldUpdatedAt    = "updated_at"
	fieldFileID       = "file_id"
	fieldOwnerID      = "owner_id"
	fieldUploadedAt   = "uploaded_at"
	fieldCode         = "code"
	fieldExpiresAt    = "expires_at"
)

const (
	indexUsersEmail    = "email-index"
	indexUsersRole     = "role-index"
	indexFilesOwnerAge = "owner_id-uploaded_at-index"
)
