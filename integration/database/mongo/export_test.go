package mongo

var UserFilter = userFilter
