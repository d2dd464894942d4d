package repomanager

import (
	"context"
	"database/sql"

	"sweatstreak/internal/dbx"
	"sweatstreak/internal/server/repositories/accounts"
	"sweatstreak/internal/server/repositories/notifications"
	"sweatstreak/internal/server/repositories/posts"
	"sweatstreak/internal/server/repositories/refreshtokens"
	"sweatstreak/internal/server/repositories/socialgraph"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	SocialGraph(db dbx.DBTX) socialgraph.Repository
	Posts(db dbx.DBTX) posts.Repository
	Notifications(db dbx.DBTX) notifications.Repository
}
