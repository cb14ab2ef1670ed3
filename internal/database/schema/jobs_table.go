package schema

const JobsTable = "jobs"

// JobsTableStatements bring the jobs table to the current shape. Every
// statement is idempotent; columns added after the first release are
// nullable and appended with ADD COLUMN IF NOT EXISTS.
var JobsTableStatements = []Statement{
	{
		Description: "create jobs table",
		SQL: `
		CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			long_description TEXT NOT NULL,
			budget TEXT NOT NULL,
			time_posted TEXT NOT NULL,
			proposals INTEGER NOT NULL CHECK (proposals >= 0),
			category TEXT NOT NULL,
			expertise TEXT NOT NULL,
			client_location TEXT NOT NULL,
			client_rating DOUBLE PRECISION NOT NULL,
			job_type TEXT NOT NULL,
			project_length TEXT NOT NULL,
			weekly_hours TEXT,
			activity_on TEXT NOT NULL,
			skills TEXT[] NOT NULL,
			attachments TEXT[],
			questions TEXT[],
			client_history JSONB NOT NULL
		)
	`,
	},
	{
		Description: "add weekly_hours column",
		SQL:         `ALTER TABLE jobs ADD COLUMN IF NOT EXISTS weekly_hours TEXT`,
	},
	{
		Description: "add attachments column",
		SQL:         `ALTER TABLE jobs ADD COLUMN IF NOT EXISTS attachments TEXT[]`,
	},
	{
		Description: "add questions column",
		SQL:         `ALTER TABLE jobs ADD COLUMN IF NOT EXISTS questions TEXT[]`,
	},
	{
		Description: "index jobs by category",
		SQL:         `CREATE INDEX IF NOT EXISTS jobs_category_idx ON jobs (category)`,
	},
	{
		Description: "index jobs by expertise",
		SQL:         `CREATE INDEX IF NOT EXISTS jobs_expertise_idx ON jobs (expertise)`,
	},
	{
		Description: "index jobs by posting time",
		SQL:         `CREATE INDEX IF NOT EXISTS jobs_time_posted_idx ON jobs (time_posted DESC, id)`,
	},
}
