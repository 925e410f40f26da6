package reddit

type listing[T any] struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data T      `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type thing struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	ParentID  string `json:"parent_id"`
	Permalink string `json:"permalink"`
	Subreddit string `json:"subreddit"`
	Removed   bool   `json:"removed"`
}

type moderator struct {
	Name        string   `json:"name"`
	Permissions []string `json:"mod_permissions"`
}

type rulesResponse struct {
	Rules []struct {
		ShortName   string `json:"short_name"`
		Description string `json:"description"`
		Priority    int    `json:"priority"`
	} `json:"rules"`
}

type notesResponse struct {
	Notes []struct {
		CreatedAt    int64 `json:"created_at"`
		UserNoteData struct {
			Note     string `json:"note"`
			Label    string `json:"label"`
			RedditID string `json:"reddit_id"`
		} `json:"user_note_data"`
		ModActionData struct {
			Action  string `json:"action"`
			Details string `json:"details"`
		} `json:"mod_action_data"`
	} `json:"mod_notes"`
}

type commentResponse struct {
	JSON struct {
		Data struct {
			Things []struct {
				Data thing `json:"data"`
			} `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

type userList struct {
	Data struct {
		Children []moderator `json:"children"`
	} `json:"data"`
}
