package strategies

const (
	buttonStrategies = "Estrategias"
	buttonCompare    = "Comparar"
	buttonHelp       = "Ayuda"

	inlineKeyboardStrict  = "Estricta"
	inlineKeyboardLenient = "Permisiva"
	inlineKeyboardChart   = "Gráfica"
	inlineKeyboardList    = "Estrategias"

	symbolChart   = "📈"
	symbolList    = "📋"
	symbolCurrent = "✅"

	subcommandSimulate = "sim"
	subcommandChart    = "chart"
	subcommandList     = "list"

	appName = "Estrategias"

	metricsSource = "telegram"
)
