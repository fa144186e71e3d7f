// Package consts contains constants for the moderation domain
package consts

// Chat commands, without the leading slash
const (
	CommandStart     = "start"
	CommandHelp      = "help"
	CommandAdmin     = "admin"
	CommandStats     = "stats"
	CommandBotList   = "botlist"
	CommandAddBot    = "addbot"
	CommandRemoveBot = "removebot"
	CommandRescan    = "rescan"
)

// Callback data. Prefixed kinds carry "<chat>" or "<chat>_<id>" after the prefix.
const (
	CallbackAdminStats   = "admin_stats"
	CallbackAdminChats   = "admin_chats"
	CallbackAdminRefresh = "admin_refresh"

	CallbackAddBotPrefix        = "add_bot_"
	CallbackRemoveBotPrefix     = "remove_bot_"
	CallbackIgnoreBotPrefix     = "ignore_bot_"
	CallbackBackToBotListPrefix = "back_to_botlist_"
)

// Listing limits
const (
	MaxListedChats    = 10
	MaxRemoveButtons  = 10
	TopChats          = 5
	MaxButtonNameRune = 20
)
