package ui

import (
	"os"
	"strings"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle         = "app_title"
	KeyShowPanel        = "show_panel"
	KeyHidePanel        = "hide_panel"
	KeyRefresh          = "refresh"
	KeyAddTemplate      = "add_template"
	KeySettings         = "settings"
	KeyFile             = "file"
	KeyLanguage         = "language"
	KeySave             = "save"
	KeyCancel           = "cancel"
	KeyBrowse           = "browse"
	KeyEnabled          = "enabled"
	KeyRemove           = "remove"
	KeyRename           = "rename"
	KeyReveal           = "reveal"
	KeyDisplayName      = "display_name"
	KeyPixels           = "pixels"
	KeyNoTemplates      = "no_templates"
	KeyPreviewFailed    = "preview_failed"
	KeyTemplateRemoved  = "template_removed"
	KeyTemplateEnabled  = "template_enabled"
	KeyTemplateDisabled = "template_disabled"
	KeyRemoveFailed     = "remove_failed"
	KeyToggleFailed     = "toggle_failed"
	KeyAddFailed        = "add_failed"
	KeyRenameFailed     = "rename_failed"
	KeySyncFailed       = "sync_failed"
	KeyTemplateAdded    = "template_added"
	KeyManifestPath     = "manifest_path"
	KeySyncInterval     = "sync_interval"
	KeyThumbnailSize    = "thumbnail_size"
	KeyPreloadParallel  = "preload_parallel"
	KeyOpenOnStart      = "open_on_start"
	KeySettingsSaved    = "settings_saved"
	KeyRestartRequired  = "restart_required"
	KeyErrorOpeningFile = "error_opening_file"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. "system" picks the language from
// the LANG environment variable when it is supported.
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = systemLanguage()
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

func systemLanguage() string {
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); v != "" {
			code, _, _ := strings.Cut(v, "_")
			code, _, _ = strings.Cut(code, ".")
			return strings.ToLower(code)
		}
	}
	return "en"
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:         "Template Overlay",
		KeyShowPanel:        "Show templates",
		KeyHidePanel:        "Hide templates",
		KeyRefresh:          "Refresh",
		KeyAddTemplate:      "Add template",
		KeySettings:         "Settings",
		KeyFile:             "File",
		KeyLanguage:         "Language",
		KeySave:             "Save",
		KeyCancel:           "Cancel",
		KeyBrowse:           "Browse",
		KeyEnabled:          "Enabled",
		KeyRemove:           "Remove",
		KeyRename:           "Rename",
		KeyReveal:           "Reveal",
		KeyDisplayName:      "Display name",
		KeyPixels:           "%d px",
		KeyNoTemplates:      "No templates yet",
		KeyPreviewFailed:    "Preview unavailable",
		KeyTemplateRemoved:  "Template removed",
		KeyTemplateEnabled:  "Template enabled",
		KeyTemplateDisabled: "Template disabled",
		KeyRemoveFailed:     "Could not remove template",
		KeyToggleFailed:     "Could not change template state",
		KeyAddFailed:        "Could not add template",
		KeyRenameFailed:     "Could not rename template",
		KeySyncFailed:       "Template sync failed",
		KeyTemplateAdded:    "Template added",
		KeyManifestPath:     "Template manifest",
		KeySyncInterval:     "Sync interval (ms)",
		KeyThumbnailSize:    "Preview size (px)",
		KeyPreloadParallel:  "Parallel previews",
		KeyOpenOnStart:      "Show templates on start",
		KeySettingsSaved:    "Settings saved",
		KeyRestartRequired:  "Some changes apply after restart",
		KeyErrorOpeningFile: "Error opening file",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyAppTitle:         "Оверлей шаблонов",
		KeyShowPanel:        "Показать шаблоны",
		KeyHidePanel:        "Скрыть шаблоны",
		KeyRefresh:          "Обновить",
		KeyAddTemplate:      "Добавить шаблон",
		KeySettings:         "Настройки",
		KeyFile:             "Файл",
		KeyLanguage:         "Язык",
		KeySave:             "Сохранить",
		KeyCancel:           "Отмена",
		KeyBrowse:           "Обзор",
		KeyEnabled:          "Включён",
		KeyRemove:           "Удалить",
		KeyRename:           "Переименовать",
		KeyReveal:           "Показать файл",
		KeyDisplayName:      "Отображаемое имя",
		KeyPixels:           "%d пикс.",
		KeyNoTemplates:      "Шаблонов пока нет",
		KeyPreviewFailed:    "Превью недоступно",
		KeyTemplateRemoved:  "Шаблон удалён",
		KeyTemplateEnabled:  "Шаблон включён",
		KeyTemplateDisabled: "Шаблон выключен",
		KeyRemoveFailed:     "Не удалось удалить шаблон",
		KeyToggleFailed:     "Не удалось изменить состояние шаблона",
		KeyAddFailed:        "Не удалось добавить шаблон",
		KeyRenameFailed:     "Не удалось переименовать шаблон",
		KeySyncFailed:       "Ошибка синхронизации шаблонов",
		KeyTemplateAdded:    "Шаблон добавлен",
		KeyManifestPath:     "Файл шаблонов",
		KeySyncInterval:     "Интервал синхронизации (мс)",
		KeyThumbnailSize:    "Размер превью (пикс.)",
		KeyPreloadParallel:  "Параллельных превью",
		KeyOpenOnStart:      "Показывать шаблоны при запуске",
		KeySettingsSaved:    "Настройки сохранены",
		KeyRestartRequired:  "Часть изменений применится после перезапуска",
		KeyErrorOpeningFile: "Ошибка открытия файла",
	}

	// Portuguese texts
	l.texts["pt"] = map[string]string{
		KeyAppTitle:         "Sobreposição de Modelos",
		KeyShowPanel:        "Mostrar modelos",
		KeyHidePanel:        "Ocultar modelos",
		KeyRefresh:          "Atualizar",
		KeyAddTemplate:      "Adicionar modelo",
		KeySettings:         "Configurações",
		KeyFile:             "Arquivo",
		KeyLanguage:         "Idioma",
		KeySave:             "Salvar",
		KeyCancel:           "Cancelar",
		KeyBrowse:           "Navegar",
		KeyEnabled:          "Ativado",
		KeyRemove:           "Remover",
		KeyRename:           "Renomear",
		KeyReveal:           "Mostrar arquivo",
		KeyDisplayName:      "Nome exibido",
		KeyPixels:           "%d px",
		KeyNoTemplates:      "Nenhum modelo ainda",
		KeyPreviewFailed:    "Prévia indisponível",
		KeyTemplateRemoved:  "Modelo removido",
		KeyTemplateEnabled:  "Modelo ativado",
		KeyTemplateDisabled: "Modelo desativado",
		KeyRemoveFailed:     "Não foi possível remover o modelo",
		KeyToggleFailed:     "Não foi possível alterar o modelo",
		KeyAddFailed:        "Não foi possível adicionar o modelo",
		KeyRenameFailed:     "Não foi possível renomear o modelo",
		KeySyncFailed:       "Falha ao sincronizar modelos",
		KeyTemplateAdded:    "Modelo adicionado",
		KeyManifestPath:     "Arquivo de modelos",
		KeySyncInterval:     "Intervalo de sincronização (ms)",
		KeyThumbnailSize:    "Tamanho da prévia (px)",
		KeyPreloadParallel:  "Prévias em paralelo",
		KeyOpenOnStart:      "Mostrar modelos ao iniciar",
		KeySettingsSaved:    "Configurações salvas com sucesso!",
		KeyRestartRequired:  "Algumas alterações valem após reiniciar",
		KeyErrorOpeningFile: "Erro ao abrir arquivo",
	}
}
