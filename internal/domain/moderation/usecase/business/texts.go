package business

// User-facing texts
const (
	textStartOwner = `🤖 Добро пожаловать в админ-панель бота!

Доступные команды:
/admin - Админ панель
/stats - Статистика

Бот автоматически удаляет рекламные сообщения от ботов (определяет по username, оканчивающемуся на "bot").`

	textStartUser = `🤖 Привет! Я бот для модерации рекламы от других ботов.

Добавь меня в чат и дай права администратора для удаления сообщений.
Используй /botlist чтобы посмотреть список отслеживаемых ботов.`

	textHelp = `📚 Справка:

/botlist - список отслеживаемых ботов в чате
/addbot - добавить бота в отслеживание (ответом на его сообщение или /addbot @username_бота / ID)
/removebot - исключить бота из отслеживания (так же, как /addbot)
/rescan - пересобрать список ботов среди администраторов чата

Управлять списком могут только администраторы чата.`

	textWelcome = `🤖 Привет! Я бот для модерации рекламных сообщений от других ботов.

⚠️ Для корректной работы мне нужны права администратора:
• Удаление сообщений

📋 Команды:
• /botlist - список отслеживаемых ботов
• /addbot - добавить бота в отслеживание

🎯 Я автоматически определяю ботов по их username (должен оканчиваться на "bot")`

	textAdminPanel = "🔧 Админ панель\n\nВыберите действие:"

	textButtonStats   = "📊 Статистика чатов"
	textButtonChats   = "📋 Список всех чатов"
	textButtonRefresh = "🔄 Обновить данные"
	textButtonAdd     = "➕ Добавить бота"
	textButtonRemove  = "➖ Исключить бота"
	textButtonBack    = "« Назад"

	textStatsHeader    = "📊 Статистика бота:\n\n"
	textStatsTotals    = "🔹 Активных чатов: %d\n🔹 Отслеживаемых ботов: %d\n🔹 Время: %s\n"
	textStatsTopHeader = "\n📋 Топ-%d чатов по количеству ботов:\n"
	textStatsTopLine   = "%d. Chat %d: %d ботов\n"

	textPanelStats   = "📊 Статистика:\n\n🔹 Всего чатов: %d\n🔹 Всего отслеживаемых ботов: %d\n🔹 Последнее обновление: %s"
	textNoChats      = "📋 Нет активных чатов."
	textChatsHeader  = "📋 Активные чаты:\n\n"
	textChatsLine    = "🔸 Chat ID: %d\n   Ботов: %d\n\n"
	textChatsMore    = "... и еще %d чатов"
	textRefreshed    = "🔄 Данные обновлены!"
	textRefreshError = "❌ Не удалось сохранить данные."

	textNoRecord   = "🤖 В этом чате пока нет отслеживаемых ботов."
	textNoActive   = "🤖 В этом чате нет активных ботов для отслеживания."
	textListHeader = "🤖 Отслеживаемые боты в этом чате:\n\n"
	textListLine   = "%d. %s (ID: %d)\n"

	textAddInstructions = `➕ Для добавления бота в список отслеживания:

1. Ответьте на сообщение от бота командой /addbot
2. Или отправьте /addbot @username_бота`
	textNothingToRemove = "❌ Нет ботов для удаления."
	textChooseToIgnore  = "Выберите бота для исключения из отслеживания:"
	textIgnored         = "✅ Бот %s исключен из отслеживания."

	textAddUsage    = "Использование:\n• Ответьте на сообщение бота: /addbot\n• Или укажите username или ID: /addbot @username 123456"
	textRemoveUsage = "Использование:\n• Ответьте на сообщение бота: /removebot\n• Или укажите username или ID: /removebot @username 123456"

	textAdded        = "✅ Бот %s добавлен в отслеживание."
	textRemoved      = "✅ Бот %s исключен из отслеживания."
	textArgInvalid   = "❌ %s: неверный ID или username"
	textArgUnknown   = "❌ %s: не удалось найти пользователя. Попросите его написать в чат и ответьте на его сообщение командой /addbot"
	textArgUntracked = "❌ %s: не отслеживается"
	textArgFailed    = "❌ %s: ошибка"

	textRescanned   = "🔄 Список обновлён: среди администраторов найдено ботов: %d."
	textRescanError = "❌ Не удалось получить список администраторов."

	textSpamRemoved = "🚫 Удалена реклама от %s"
)
