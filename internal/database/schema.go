package database

// posts_follow 上刻意没有 (user_id, author_id) 唯一约束，重复关注由应用层检查
var schemas = map[string][]string{
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(150) NOT NULL,
			first_name VARCHAR(150) NOT NULL DEFAULT '',
			last_name VARCHAR(150) NOT NULL DEFAULT '',
			email VARCHAR(254) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			created_at DATETIME(6) NOT NULL,
			UNIQUE KEY uq_users_username (username),
			KEY idx_users_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS posts_group (
			id INT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			slug VARCHAR(50) NOT NULL,
			description TEXT NOT NULL,
			UNIQUE KEY uq_group_slug (slug)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS posts_post (
			id INT AUTO_INCREMENT PRIMARY KEY,
			text TEXT NOT NULL,
			pub_date DATETIME(6) NOT NULL,
			image VARCHAR(500) NOT NULL DEFAULT '',
			author_id INT NOT NULL,
			group_id INT NULL,
			KEY idx_post_pub_date (pub_date),
			CONSTRAINT fk_post_author FOREIGN KEY (author_id) REFERENCES users (id) ON DELETE CASCADE,
			CONSTRAINT fk_post_group FOREIGN KEY (group_id) REFERENCES posts_group (id) ON DELETE SET NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS posts_comment (
			id INT AUTO_INCREMENT PRIMARY KEY,
			post_id INT NOT NULL,
			author_id INT NOT NULL,
			text TEXT NOT NULL,
			created DATETIME(6) NOT NULL,
			CONSTRAINT fk_comment_post FOREIGN KEY (post_id) REFERENCES posts_post (id) ON DELETE CASCADE,
			CONSTRAINT fk_comment_author FOREIGN KEY (author_id) REFERENCES users (id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS posts_follow (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			author_id INT NOT NULL,
			KEY idx_follow_pair (user_id, author_id),
			CONSTRAINT fk_follow_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
			CONSTRAINT fk_follow_author FOREIGN KEY (author_id) REFERENCES users (id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS posts_group (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS posts_post (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			pub_date DATETIME NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			author_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			group_id INTEGER NULL REFERENCES posts_group (id) ON DELETE SET NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_post_pub_date ON posts_post (pub_date)`,
		`CREATE TABLE IF NOT EXISTS posts_comment (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id INTEGER NOT NULL REFERENCES posts_post (id) ON DELETE CASCADE,
			author_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			created DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS posts_follow (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			author_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_follow_pair ON posts_follow (user_id, author_id)`,
	},
}
