package mysql

const listCategoriesSQL = `SELECT id, name FROM categories ORDER BY id`

const getCategorySQL = `SELECT id, name FROM categories WHERE id = ?`

// Ids are max+1 rather than AUTO_INCREMENT so both storage backends hand out
// the same sequence. The row lock serialises concurrent inserts.
const nextShopIDSQL = `SELECT COALESCE(MAX(id), 0) + 1 FROM shops FOR UPDATE`

const insertShopSQL = `
INSERT INTO shops (id, name, category_id, date_added)
VALUES (?, ?, ?, ?)
`

const getShopSQL = `SELECT id, name, category_id, date_added FROM shops WHERE id = ?`

const listShopsSQL = `SELECT id, name, category_id, date_added FROM shops ORDER BY id`

const deleteShopSQL = `DELETE FROM shops WHERE id = ?`

const deleteShopRoomsByShopSQL = `DELETE FROM shop_rooms WHERE shop_id = ?`

const deleteCommercialsByShopSQL = `DELETE FROM commercials WHERE shop_id = ?`

const nextCommercialIDSQL = `SELECT COALESCE(MAX(id), 0) + 1 FROM commercials FOR UPDATE`

const insertCommercialSQL = `
INSERT INTO commercials (id, shop_id, title, body, date_added)
VALUES (?, ?, ?, ?, ?)
`

const getCommercialSQL = `SELECT id, shop_id, title, body, date_added FROM commercials WHERE id = ?`

const listCommercialsSQL = `SELECT id, shop_id, title, body, date_added FROM commercials ORDER BY id`

const listCommercialsByShopSQL = `
SELECT id, shop_id, title, body, date_added
FROM commercials
WHERE shop_id = ?
ORDER BY id
`

const deleteCommercialSQL = `DELETE FROM commercials WHERE id = ?`

// A room holds one shop; re-assigning overwrites.
const upsertShopRoomSQL = `
INSERT INTO shop_rooms (room_id, shop_id)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE shop_id = VALUES(shop_id)
`

const deleteShopRoomSQL = `DELETE FROM shop_rooms WHERE room_id = ?`

const listShopRoomsSQL = `SELECT room_id, shop_id FROM shop_rooms ORDER BY room_id`
