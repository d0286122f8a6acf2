package mysql

// Column order shared by every listing read; keep scanListing in sync.
const listingColumns = `
  id, name, region, city, description, location, address, surroundings,
  recreation_areas, type, status, paid, price, image_url, image_key,
  contact_name, email, phone, website, created_at, approved_at`

const insertListingSQL = `
INSERT INTO listings
  (id, name, region, city, description, location, address, surroundings,
   recreation_areas, type, status, paid, price, image_url, image_key,
   contact_name, email, phone, website, created_at, approved_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const getListingSQL = `SELECT` + listingColumns + ` FROM listings WHERE id = ?`

const lockListingSQL = getListingSQL + ` FOR UPDATE`

const deleteListingSQL = `DELETE FROM listings WHERE id = ?`

// Eligible = approved and paid; newest first like the admin view.
const listEligibleSQL = `SELECT` + listingColumns + `
FROM listings
WHERE status = 'approved' AND paid = 1
ORDER BY created_at DESC, id DESC
`

// -----------------------------------------------------------------------------
// CONVERSATIONS
// -----------------------------------------------------------------------------

// The upsert takes the session row lock, so concurrent appends to one
// session serialize until commit.
const upsertSessionSQL = `
INSERT INTO chat_sessions (session_id, created_at, updated_at)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE updated_at = VALUES(updated_at)
`

const insertMessagesPrefix = "INSERT INTO chat_messages (session_id, role, content, created_at) VALUES "

const getSessionSQL = `SELECT created_at, updated_at FROM chat_sessions WHERE session_id = ?`

const listMessagesSQL = `
SELECT role, content, created_at
FROM chat_messages
WHERE session_id = ?
ORDER BY id ASC
`
