package catalog

import "github.com/kwararru/shell/internal/shared/types"

func filter(action types.Action, dataType string) types.IntentFilter {
	return types.IntentFilter{Action: action, DataType: dataType}
}

// Builtins returns the manifests shipped with the host, in the order they
// are registered at startup. Order matters for first-match routing.
func Builtins() []types.AppManifest {
	return []types.AppManifest{
		{
			ID:   "default",
			Name: "General",
			Mode: "default",
			Icon: "globe",
			Permissions: []types.Permission{
				types.PermissionAIAccess, types.PermissionStorage,
				types.PermissionWebSearch, types.PermissionFileAccess,
			},
			IntentFilters: []types.IntentFilter{
				filter(types.ActionView, "text/*"),
				filter(types.ActionShare, "*/*"),
			},
			Entry: "chat",
		},
		{
			ID:   "study",
			Name: "Study",
			Mode: "study",
			Icon: "book-open",
			Permissions: []types.Permission{
				types.PermissionAIAccess, types.PermissionStorage, types.PermissionFileAccess,
			},
			IntentFilters: []types.IntentFilter{
				filter(types.ActionStudy, "document/*"),
				filter(types.ActionCreate, "flashcard/*"),
			},
			Entry: "study",
		},
		{
			ID:   "news",
			Name: "News",
			Mode: "news",
			Icon: "newspaper",
			Permissions: []types.Permission{
				types.PermissionAIAccess, types.PermissionWebSearch, types.PermissionStorage,
			},
			IntentFilters: []types.IntentFilter{
				filter(types.ActionNews, "article/*"),
				filter(types.ActionView, "news/*"),
			},
			Entry: "news",
		},
		{
			ID:          "quiz",
			Name:        "Quiz",
			Mode:        "quiz",
			Icon:        "help-circle",
			Permissions: []types.Permission{types.PermissionAIAccess, types.PermissionStorage},
			IntentFilters: []types.IntentFilter{
				filter(types.ActionQuiz, "test/*"),
				filter(types.ActionCreate, "quiz/*"),
			},
			Entry: "quiz",
		},
		{
			ID:          "debate",
			Name:        "Debate",
			Mode:        "debate",
			Icon:        "scale",
			Permissions: []types.Permission{types.PermissionAIAccess, types.PermissionStorage},
			IntentFilters: []types.IntentFilter{
				filter(types.ActionDebate, "topic/*"),
				filter(types.ActionCreate, "debate/*"),
			},
			Entry: "debate",
		},
		{
			ID:            "translator",
			Name:          "Translator",
			Mode:          "translator",
			Icon:          "languages",
			Permissions:   []types.Permission{types.PermissionAIAccess, types.PermissionStorage},
			IntentFilters: []types.IntentFilter{filter(types.ActionTranslate, "text/*")},
			Entry:         "translator",
		},
		{
			ID:            "ai-writer",
			Name:          "AI Writer",
			Mode:          "aiWriter",
			Icon:          "pen-tool",
			Permissions:   []types.Permission{types.PermissionAIAccess, types.PermissionStorage},
			IntentFilters: []types.IntentFilter{filter(types.ActionCreate, "text/*")},
			Entry:         "ai-writer",
		},
		{
			ID:            "code-helper",
			Name:          "Code Helper",
			Mode:          "codeHelper",
			Icon:          "code",
			Permissions:   []types.Permission{types.PermissionAIAccess, types.PermissionStorage},
			IntentFilters: []types.IntentFilter{filter(types.ActionCreate, "code/*")},
			Entry:         "code-helper",
		},
		{
			ID:   "voice-journal",
			Name: "Voice Journal",
			Mode: "voiceJournal",
			Icon: "audio-lines",
			Permissions: []types.Permission{
				types.PermissionAIAccess, types.PermissionMicrophone, types.PermissionStorage,
			},
			IntentFilters: []types.IntentFilter{filter(types.ActionCreate, "journal/*")},
			Entry:         "voice-journal",
		},
	}
}
